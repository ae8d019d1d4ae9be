package urlcheck

import (
	"sync"
	"time"
)

// Cache stores validation verdicts per URL. Implementations handle TTL
// expiry themselves; Get never returns a stale verdict.
type Cache interface {
	Get(url string) (valid bool, ok bool)
	Put(url string, valid bool)
	Stats() CacheStats
}

// CacheStats summarizes the cache contents for the status endpoint.
type CacheStats struct {
	Entries int `json:"entries"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// purgeThreshold is the size beyond which expired entries are swept.
// Eviction is lazy: no timers, just an occasional pass on write.
const purgeThreshold = 1000

type memoryEntry struct {
	valid     bool
	checkedAt time.Time
}

// MemoryCache is the in-process verdict cache.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache builds a verdict cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached verdict for url if present and fresh.
func (c *MemoryCache) Get(url string) (bool, bool) {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.checkedAt) > c.ttl {
		return false, false
	}
	return entry.valid, true
}

// Put stores a verdict, sweeping expired entries once the cache grows past
// the purge threshold.
func (c *MemoryCache) Put(url string, valid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = memoryEntry{valid: valid, checkedAt: c.now()}

	if len(c.entries) > purgeThreshold {
		cutoff := c.now().Add(-c.ttl)
		for k, e := range c.entries {
			if e.checkedAt.Before(cutoff) {
				delete(c.entries, k)
			}
		}
	}
}

// Stats reports entry counts split by verdict.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{}
	cutoff := c.now().Add(-c.ttl)
	for _, e := range c.entries {
		if e.checkedAt.Before(cutoff) {
			continue
		}
		stats.Entries++
		if e.valid {
			stats.Valid++
		} else {
			stats.Invalid++
		}
	}
	return stats
}
