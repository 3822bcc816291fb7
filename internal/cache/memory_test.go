package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	mc := NewMemoryCache(&Config{KeyPrefix: "test"})
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("value"), 0))

	got, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	exists, err := mc.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := newTestCache(t)

	_, err := mc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheNotFound)

	exists, err := mc.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := mc.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("x"), 0))
	require.NoError(t, mc.Delete(ctx, "a"))

	_, err := mc.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, mc.Delete(ctx, "a"))
}

func TestMemoryCacheIncrement(t *testing.T) {
	mc := newTestCache(t)
	ctx := context.Background()

	n, err := mc.Increment(ctx, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = mc.Increment(ctx, "counter", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	require.NoError(t, mc.Set(ctx, "text", []byte("abc"), 0))
	_, err = mc.Increment(ctx, "text", 1)
	assert.Error(t, err)
}

func TestMemoryCacheKeys(t *testing.T) {
	mc := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "refresh:a", []byte("1"), 0))
	require.NoError(t, mc.Set(ctx, "refresh:b", []byte("2"), 0))
	require.NoError(t, mc.Set(ctx, "other", []byte("3"), 0))

	keys, err := mc.Keys(ctx, "refresh:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"refresh:a", "refresh:b"}, keys)
}

func TestMemoryCacheTTLAndExpire(t *testing.T) {
	mc := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("x"), 0))

	ttl, err := mc.TTL(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, mc.Expire(ctx, "a", time.Hour))
	ttl, err = mc.TTL(ctx, "a")
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	assert.ErrorIs(t, mc.Expire(ctx, "missing", time.Hour), ErrCacheNotFound)
}
