package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProvider stores session namespaces in Redis. Keys expire with the
// session, so nothing needs explicit cleanup.
type RedisProvider struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisProvider constructs a Redis backed provider.
func NewRedisProvider(client redis.UniversalClient, ttl time.Duration) *RedisProvider {
	return &RedisProvider{client: client, ttl: ttl}
}

// Session returns the namespace for id.
func (p *RedisProvider) Session(id string) Store {
	return &redisStore{client: p.client, ttl: p.ttl, prefix: "session:" + id + ":"}
}

type redisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load session key: %w", err)
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("persist session key: %w", err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session key: %w", err)
	}
	return nil
}
