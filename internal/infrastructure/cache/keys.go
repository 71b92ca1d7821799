package cache

import (
	"strings"

	"github.com/google/uuid"
)

// Key categories for the metric cache. Each category holds one family of
// computed snapshots so that invalidation can sweep all of them at once.
const (
	CategoryDashboard = "dashboard"
	CategoryRevenue   = "revenue"
	CategoryRealtime  = "realtime"
)

// KeyBuilder constructs namespaced cache keys for metric snapshots.
// Keys have the shape <namespace>:<category>:<tenantID>[:<dim>...].
type KeyBuilder struct {
	namespace string
}

// NewKeyBuilder creates a key builder with the given namespace.
// The namespace must not contain ':' (enforced by config validation).
func NewKeyBuilder(namespace string) *KeyBuilder {
	if namespace == "" {
		namespace = "metrics"
	}
	return &KeyBuilder{namespace: namespace}
}

// Build returns the cache key for a tenant-scoped snapshot.
// Additional dimensions (period kind, date range hashes) are appended
// in order, joined by ':'.
func (b *KeyBuilder) Build(category string, tenantID uuid.UUID, dims ...string) string {
	parts := make([]string, 0, 3+len(dims))
	parts = append(parts, b.namespace, category, tenantID.String())
	parts = append(parts, dims...)
	return strings.Join(parts, ":")
}

// TenantPattern returns a glob pattern matching every key of the tenant
// across all categories. UUIDs have a fixed textual length, so the
// trailing wildcard cannot leak into another tenant's keyspace.
func (b *KeyBuilder) TenantPattern(tenantID uuid.UUID) string {
	return b.namespace + ":*:" + tenantID.String() + "*"
}

// Namespace returns the configured namespace
func (b *KeyBuilder) Namespace() string {
	return b.namespace
}
