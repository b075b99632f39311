package leaderboard

import (
	"sync"
	"time"
)

// cacheEntry holds one cached payload with its expiry.
type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is a small TTL cache for rendered leaderboard payloads. The
// board only changes once a day after a sync, so a short TTL plus
// explicit invalidation after each run keeps reads off sqlite.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached payload for key, if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

// Set stores a payload under key.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// InvalidateAll drops every cached entry. Called after a sync run.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len reports the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
