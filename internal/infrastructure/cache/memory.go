package cache

import (
	"time"

	"storefront-backend/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

// EvictFunc is called after an item expires or is deleted.
type EvictFunc func(key string, value interface{})

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates an in-memory cache. Items live for defaultExpiration
// unless Set says otherwise; expired items are swept every cleanupInterval
// (0 disables sweeping, expired items are then only hidden from Get).
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration, onEvict EvictFunc) cache.CacheService {
	store := gocache.New(defaultExpiration, cleanupInterval)
	if onEvict != nil {
		store.OnEvicted(onEvict)
	}
	return &memoryCache{store: store}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

func (c *memoryCache) Delete(key string) {
	c.store.Delete(key)
}

func (c *memoryCache) ItemCount() int {
	return c.store.ItemCount()
}

// Flush drops every item without calling the eviction hook.
func (c *memoryCache) Flush() {
	c.store.Flush()
}
