package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMetricStore_GetSet(t *testing.T) {
	store := NewInMemoryMetricStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns ErrCacheMiss for unknown key", func(t *testing.T) {
		_, err := store.Get(ctx, "metrics:dashboard:unknown")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("round-trips a stored value", func(t *testing.T) {
		key := "metrics:dashboard:tenant-1"
		err := store.Set(ctx, key, []byte(`{"total_revenue":"1200.50"}`), time.Hour)
		require.NoError(t, err)

		val, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"total_revenue":"1200.50"}`), val)
	})

	t.Run("expires values after TTL", func(t *testing.T) {
		key := "metrics:dashboard:tenant-2"
		err := store.Set(ctx, key, []byte("x"), 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, ErrCacheMiss)

		exists, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("zero TTL stores without expiry", func(t *testing.T) {
		key := "metrics:dashboard:tenant-3"
		err := store.Set(ctx, key, []byte("x"), 0)
		require.NoError(t, err)

		ttl, err := store.TimeToLive(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), ttl)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		key := "metrics:dashboard:tenant-4"
		require.NoError(t, store.Set(ctx, key, []byte("abc"), time.Hour))

		val, err := store.Get(ctx, key)
		require.NoError(t, err)
		val[0] = 'z'

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})
}

func TestInMemoryMetricStore_Delete(t *testing.T) {
	store := NewInMemoryMetricStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("removes an existing key", func(t *testing.T) {
		key := "metrics:dashboard:tenant-1"
		require.NoError(t, store.Set(ctx, key, []byte("x"), time.Hour))

		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("deleting a missing key is not an error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "metrics:dashboard:missing"))
	})
}

func TestInMemoryMetricStore_DeleteByPattern(t *testing.T) {
	store := NewInMemoryMetricStore()
	defer store.Close()

	ctx := context.Background()
	keys := NewKeyBuilder("metrics")

	tenantA := uuid.New()
	tenantB := uuid.New()

	require.NoError(t, store.Set(ctx, keys.Build(CategoryDashboard, tenantA), []byte("a"), time.Hour))
	require.NoError(t, store.Set(ctx, keys.Build(CategoryRevenue, tenantA, "month"), []byte("b"), time.Hour))
	require.NoError(t, store.Set(ctx, keys.Build(CategoryRealtime, tenantA), []byte("c"), time.Hour))
	require.NoError(t, store.Set(ctx, keys.Build(CategoryDashboard, tenantB), []byte("d"), time.Hour))

	deleted, err := store.DeleteByPattern(ctx, keys.TenantPattern(tenantA))
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted, "all of tenant A's keys should be removed")

	// Tenant B is untouched
	exists, err := store.Exists(ctx, keys.Build(CategoryDashboard, tenantB))
	require.NoError(t, err)
	assert.True(t, exists)

	// Tenant A keys are gone across all categories
	for _, key := range []string{
		keys.Build(CategoryDashboard, tenantA),
		keys.Build(CategoryRevenue, tenantA, "month"),
		keys.Build(CategoryRealtime, tenantA),
	} {
		exists, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists, "key %s should be deleted", key)
	}
}

func TestInMemoryMetricStore_TimeToLive(t *testing.T) {
	store := NewInMemoryMetricStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns ErrCacheMiss for missing key", func(t *testing.T) {
		_, err := store.TimeToLive(ctx, "missing")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("reports remaining TTL", func(t *testing.T) {
		key := "metrics:dashboard:tenant-ttl"
		require.NoError(t, store.Set(ctx, key, []byte("x"), time.Hour))

		ttl, err := store.TimeToLive(ctx, key)
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
		assert.LessOrEqual(t, ttl, time.Hour)
	})
}
