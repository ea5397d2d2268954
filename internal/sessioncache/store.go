// Package sessioncache provides per-session key-value storage. Each portal
// session owns an isolated namespace that lives as long as the session.
package sessioncache

import "context"

// Store is the key-value namespace of a single session.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Provider hands out the store for a session id.
type Provider interface {
	Session(id string) Store
}
