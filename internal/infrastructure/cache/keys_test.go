package cache

import (
	"path"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilder_Build(t *testing.T) {
	keys := NewKeyBuilder("metrics")
	tenantID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	t.Run("tenant-only key", func(t *testing.T) {
		key := keys.Build(CategoryDashboard, tenantID)
		assert.Equal(t, "metrics:dashboard:11111111-2222-3333-4444-555555555555", key)
	})

	t.Run("appends dimensions in order", func(t *testing.T) {
		key := keys.Build(CategoryRevenue, tenantID, "month", "2026-01-01", "2026-08-31")
		assert.Equal(t, "metrics:revenue:11111111-2222-3333-4444-555555555555:month:2026-01-01:2026-08-31", key)
	})

	t.Run("empty namespace falls back to metrics", func(t *testing.T) {
		b := NewKeyBuilder("")
		assert.Equal(t, "metrics", b.Namespace())
	})

	t.Run("same inputs produce the same key", func(t *testing.T) {
		a := keys.Build(CategoryDashboard, tenantID)
		b := keys.Build(CategoryDashboard, tenantID)
		assert.Equal(t, a, b)
	})
}

func TestKeyBuilder_TenantPattern(t *testing.T) {
	keys := NewKeyBuilder("metrics")
	tenantA := uuid.New()
	tenantB := uuid.New()

	pattern := keys.TenantPattern(tenantA)

	t.Run("matches every category of the tenant", func(t *testing.T) {
		for _, key := range []string{
			keys.Build(CategoryDashboard, tenantA),
			keys.Build(CategoryRevenue, tenantA, "week"),
			keys.Build(CategoryRealtime, tenantA),
		} {
			matched, err := path.Match(pattern, key)
			require.NoError(t, err)
			assert.True(t, matched, "pattern should match %s", key)
		}
	})

	t.Run("does not match another tenant", func(t *testing.T) {
		matched, err := path.Match(pattern, keys.Build(CategoryDashboard, tenantB))
		require.NoError(t, err)
		assert.False(t, matched)
	})
}
