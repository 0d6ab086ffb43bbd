package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/clearsight/clearsight/internal/aqi"
)

// Cache stores resolved readings keyed by rounded coordinate. A hit for
// a key returns the same reading without re-querying sources; writes are
// last-writer-wins. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached reading and the time it was stored, or
	// ok=false on a miss. Freshness is the caller's concern.
	Get(ctx context.Context, key string) (reading *aqi.Reading, storedAt time.Time, ok bool)

	// Put stores a reading under the key.
	Put(ctx context.Context, key string, reading *aqi.Reading, storedAt time.Time)
}

// MemoryCache is a mutex-guarded in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	reading  *aqi.Reading
	storedAt time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*aqi.Reading, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return entry.reading, entry.storedAt, true
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, key string, reading *aqi.Reading, storedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{reading: reading, storedAt: storedAt}
}

// Purge removes entries stored before the cutoff. Called periodically by
// the worker to bound memory growth.
func (c *MemoryCache) Purge(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if entry.storedAt.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
