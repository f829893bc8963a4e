package cache

import (
	"sync"
	"time"
)

// item represents a cached value with expiration
type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a small in-memory TTL cache keyed by string
type Cache[V any] struct {
	items map[string]item[V]
	mutex sync.Mutex
	now   func() time.Time
}

// New creates a new cache instance
func New[V any]() *Cache[V] {
	return &Cache[V]{
		items: make(map[string]item[V]),
		now:   time.Now,
	}
}

// SetIfAbsent stores value only when key has no live entry. It reports
// whether the value was stored.
func (c *Cache[V]) SetIfAbsent(key string, value V, ttl time.Duration) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	if it, exists := c.items[key]; exists && !now.After(it.expiresAt) {
		return false
	}
	c.items[key] = item[V]{value: value, expiresAt: now.Add(ttl)}
	return true
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

// Prune drops expired entries
func (c *Cache[V]) Prune() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}
