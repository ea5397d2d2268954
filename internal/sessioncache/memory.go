package sessioncache

import (
	"context"
	"sync"
	"time"
)

// MemoryProvider keeps session namespaces in process memory. A session idle
// for longer than the ttl is dropped on a later access.
type MemoryProvider struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

type memorySession struct {
	store    *MemoryStore
	lastSeen time.Time
}

// NewMemoryProvider creates an empty provider. A non-positive ttl keeps
// sessions until End is called.
func NewMemoryProvider(ttl time.Duration) *MemoryProvider {
	return &MemoryProvider{ttl: ttl, now: time.Now, sessions: make(map[string]*memorySession)}
}

// Session returns the store for id, creating it empty on first use.
func (p *MemoryProvider) Session(id string) Store {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.expire(now)
	sess, ok := p.sessions[id]
	if !ok {
		sess = &memorySession{store: NewMemoryStore()}
		p.sessions[id] = sess
	}
	sess.lastSeen = now
	return sess.store
}

// End drops a session and everything stored in it.
func (p *MemoryProvider) End(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, id)
}

// Len returns the number of live sessions.
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func (p *MemoryProvider) expire(now time.Time) {
	if p.ttl <= 0 {
		return
	}
	for id, sess := range p.sessions {
		if now.Sub(sess.lastSeen) > p.ttl {
			delete(p.sessions, id)
		}
	}
}

// MemoryStore is a map backed Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
