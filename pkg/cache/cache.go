package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value      V
	expiration time.Time
}

// Cache is a simple thread-safe TTL cache for short-lived values (tokens,
// resolved credentials). Expiry is checked lazily at read time against the
// wall clock, so no background eviction is required for correctness.
type Cache[V any] struct {
	mu   sync.RWMutex
	data map[string]item[V]
	ttl  time.Duration
}

// New creates a new TTL-based in-memory cache.
func New[V any](defaultTTL time.Duration) *Cache[V] {
	return &Cache[V]{
		data: make(map[string]item[V]),
		ttl:  defaultTTL,
	}
}

// Get returns a cached value if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	var zero V
	if !ok {
		return zero, false
	}
	if time.Now().After(it.expiration) {
		// Expired — remove and miss
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return zero, false
	}
	return it.value, true
}

// Put inserts or overwrites a cache entry with the default TTL.
func (c *Cache[V]) Put(key string, value V) {
	c.PutTTL(key, value, c.ttl)
}

// PutTTL inserts or overwrites a cache entry with an explicit TTL.
func (c *Cache[V]) PutTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = item[V]{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
}

// Bust deletes a single entry from the cache (e.g., on credential rotation).
func (c *Cache[V]) Bust(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// StartCleaner periodically removes expired cache entries.
func (c *Cache[V]) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-stop:
			return
		}
	}
}

func (c *Cache[V]) cleanupExpired() {
	now := time.Now()
	c.mu.Lock()
	for k, v := range c.data {
		if now.After(v.expiration) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
}
