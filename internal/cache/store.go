// Package cache memoizes appraisal results and AI extractions behind a small
// key/value Store, kept in memory or in Redis.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/project-appraisal/pkg/constants"
)

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options selects and configures a Store backend.
type Options struct {
	Backend  string
	Address  string
	Password string
	DB       int
}

// NewStore builds the backend named in opts. An empty backend means memory.
func NewStore(opts Options) (Store, error) {
	switch opts.Backend {
	case "", constants.CacheBackendMemory:
		return NewMemoryStore(), nil
	case constants.CacheBackendRedis:
		if opts.Address == "" {
			return nil, fmt.Errorf("redis cache backend requires an address")
		}
		return NewRedisStore(opts.Address, opts.Password, opts.DB), nil
	case constants.CacheBackendNone:
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q, expected %s, %s or %s", opts.Backend,
			constants.CacheBackendMemory, constants.CacheBackendRedis, constants.CacheBackendNone)
	}
}

// Check pings stores that can report connectivity, bounded by timeout.
// Stores without a Ping method are always reachable.
func Check(ctx context.Context, store Store, timeout time.Duration) error {
	pinger, ok := store.(interface {
		Ping(ctx context.Context) error
	})
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return pinger.Ping(ctx)
}

// NopStore never holds anything.
type NopStore struct{}

// Get always misses.
func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

type memoryEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// MemoryStore is an in-process Store safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the stored value. Expired entries are dropped.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		m.mu.Lock()
		if current, still := m.entries[key]; still && current.expires.Equal(entry.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

// Set stores a copy of value. A non-positive ttl keeps it until overwritten.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Len reports the number of entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
