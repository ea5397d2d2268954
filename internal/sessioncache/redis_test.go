package sessioncache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when REDIS_ADDR is set.
func TestRedisProviderRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	provider := NewRedisProvider(client, time.Minute)
	session := uuid.NewString()
	store := provider.Session(session)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "k", "v"))
	val, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", val)

	ttl, err := client.TTL(ctx, "session:"+session+":k").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	_, found, _ = provider.Session(uuid.NewString()).Get(ctx, "k")
	require.False(t, found)

	require.NoError(t, store.Remove(ctx, "k"))
	_, found, _ = store.Get(ctx, "k")
	require.False(t, found)
}
