package warehouse

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry is one cached ERS listing.
type cacheEntry struct {
	value any
	built time.Time
}

// Cache keeps ERS listings for a TTL. Concurrent loads of the same key share one request.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	sf      singleflight.Group
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache. A zero TTL disables caching but still collapses concurrent loads.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

func (c *Cache) fresh(e cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(e.built) <= c.ttl
}

// GetOrLoad returns the cached value for key, or loads and stores it.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.fresh(e) {
		return e.value, nil
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.fresh(e) {
			return e.value, nil
		}

		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = cacheEntry{value: value, built: c.now()}
			c.mu.Unlock()
		}
		return value, nil
	})
	return v, err
}

// Invalidate drops every cached listing.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
