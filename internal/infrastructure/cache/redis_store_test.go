package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisMetricStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisMetricStoreWithClient(client), mr
}

func TestRedisMetricStore_GetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a value", func(t *testing.T) {
		store, _ := newTestRedisStore(t)

		require.NoError(t, store.Set(ctx, "metrics:dashboard:t1", []byte(`{"a":1}`), time.Minute))

		got, err := store.Get(ctx, "metrics:dashboard:t1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), got)
	})

	t.Run("missing key is a cache miss", func(t *testing.T) {
		store, _ := newTestRedisStore(t)

		_, err := store.Get(ctx, "metrics:dashboard:absent")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("expired key is a cache miss", func(t *testing.T) {
		store, mr := newTestRedisStore(t)

		require.NoError(t, store.Set(ctx, "metrics:dashboard:t1", []byte("v"), time.Minute))
		mr.FastForward(2 * time.Minute)

		_, err := store.Get(ctx, "metrics:dashboard:t1")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestRedisMetricStore_TimeToLive(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the remaining ttl", func(t *testing.T) {
		store, _ := newTestRedisStore(t)

		require.NoError(t, store.Set(ctx, "metrics:dashboard:t1", []byte("v"), 30*time.Minute))

		ttl, err := store.TimeToLive(ctx, "metrics:dashboard:t1")
		require.NoError(t, err)
		assert.Greater(t, ttl, 29*time.Minute)
		assert.LessOrEqual(t, ttl, 30*time.Minute)
	})

	t.Run("missing key reports a cache miss", func(t *testing.T) {
		store, _ := newTestRedisStore(t)

		_, err := store.TimeToLive(ctx, "metrics:dashboard:absent")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("key without expiry reports zero", func(t *testing.T) {
		store, mr := newTestRedisStore(t)
		require.NoError(t, mr.Set("metrics:dashboard:t1", "v"))

		ttl, err := store.TimeToLive(ctx, "metrics:dashboard:t1")
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), ttl)
	})
}

func TestRedisMetricStore_DeleteByPattern(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes only matching keys and reports the count", func(t *testing.T) {
		store, _ := newTestRedisStore(t)

		require.NoError(t, store.Set(ctx, "metrics:dashboard:tenant-a", []byte("v"), time.Minute))
		require.NoError(t, store.Set(ctx, "metrics:revenue:tenant-a:monthly", []byte("v"), time.Minute))
		require.NoError(t, store.Set(ctx, "metrics:dashboard:tenant-b", []byte("v"), time.Minute))

		deleted, err := store.DeleteByPattern(ctx, "metrics:*:tenant-a*")
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		_, err = store.Get(ctx, "metrics:dashboard:tenant-a")
		assert.ErrorIs(t, err, ErrCacheMiss)

		got, err := store.Get(ctx, "metrics:dashboard:tenant-b")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("no matches deletes nothing", func(t *testing.T) {
		store, _ := newTestRedisStore(t)

		deleted, err := store.DeleteByPattern(ctx, "metrics:*:tenant-z*")
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestRedisMetricStore_Exists(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	ok, err := store.Exists(ctx, "metrics:dashboard:t1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "metrics:dashboard:t1", []byte("v"), time.Minute))

	ok, err = store.Exists(ctx, "metrics:dashboard:t1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisMetricStore_Ping(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
