package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist or has expired
var ErrCacheMiss = errors.New("cache: key not found")

// MetricStore is the storage contract for serialized metric snapshots.
// Implementations must treat values as opaque byte slices; serialization
// is the caller's concern.
type MetricStore interface {
	// Get returns the value stored under key, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL. A non-positive TTL
	// stores the value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPattern removes every key matching the glob pattern and
	// returns the number of keys removed.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)

	// Exists reports whether the key is present and unexpired
	Exists(ctx context.Context, key string) (bool, error)

	// TimeToLive returns the remaining TTL of a key. Returns ErrCacheMiss
	// for missing keys and a zero duration for keys without expiry.
	TimeToLive(ctx context.Context, key string) (time.Duration, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error

	// Close releases underlying resources
	Close() error
}
