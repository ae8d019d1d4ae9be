package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a TTL key/value cache for serialized aggregate results. A miss
// is not an error; errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the in-process Store used when no redis backend is configured.
type Memory struct {
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory builds an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached value for key if present and unexpired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key for ttl, sweeping expired entries lazily.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}

	if len(m.entries) > 256 {
		now := m.now()
		for k, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, k)
			}
		}
	}
	return nil
}

// Len reports the number of entries currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
