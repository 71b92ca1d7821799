package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// InMemoryMetricStore implements MetricStore with an in-process map.
// This is suitable for single-instance deployments and for tests; for
// distributed deployments use RedisMetricStore instead.
type InMemoryMetricStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewInMemoryMetricStore creates an in-memory store with a background
// cleanup loop that evicts expired entries once per minute.
func NewInMemoryMetricStore() *InMemoryMetricStore {
	s := &InMemoryMetricStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go s.cleanupLoop(time.Minute)
	return s
}

// Get returns the value stored under key, or ErrCacheMiss
func (s *InMemoryMetricStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || entry.expired(time.Now()) {
		return nil, ErrCacheMiss
	}

	// Copy so callers cannot mutate the cached value
	val := make([]byte, len(entry.value))
	copy(val, entry.value)
	return val, nil
}

// Set stores value under key with the given TTL
func (s *InMemoryMetricStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes a single key
func (s *InMemoryMetricStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// DeleteByPattern removes every key matching the glob pattern
func (s *InMemoryMetricStore) DeleteByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key := range s.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return deleted, err
		}
		if matched {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Exists reports whether the key is present and unexpired
func (s *InMemoryMetricStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	return ok && !entry.expired(time.Now()), nil
}

// TimeToLive returns the remaining TTL of a key
func (s *InMemoryMetricStore) TimeToLive(_ context.Context, key string) (time.Duration, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	now := time.Now()
	if !ok || entry.expired(now) {
		return 0, ErrCacheMiss
	}
	if entry.expiresAt.IsZero() {
		return 0, nil
	}
	return entry.expiresAt.Sub(now), nil
}

// Ping always succeeds for the in-memory store
func (s *InMemoryMetricStore) Ping(_ context.Context) error {
	return nil
}

// Close stops the cleanup loop
func (s *InMemoryMetricStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// Len returns the number of live entries, for tests and diagnostics
func (s *InMemoryMetricStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, entry := range s.entries {
		if !entry.expired(now) {
			count++
		}
	}
	return count
}

func (s *InMemoryMetricStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *InMemoryMetricStore) evictExpired() {
	now := time.Now()
	s.mu.Lock()
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}
