// Package cachesvc implements core.Cache over an in-process store and redis.
package cachesvc

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/trezcool/college/core"
)

const memoryCleanupInterval = 5 * time.Minute

// MemoryCache keeps entries in-process; it is not shared between instances.
type MemoryCache struct {
	store *gocache.Cache
}

var _ core.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key core.CacheKey) (string, bool, error) {
	val, ok := c.store.Get(key.String())
	if !ok {
		return "", false, nil
	}
	s, ok := val.(string)
	return s, ok, nil
}

// Set stores value for ttl; a ttl <= 0 never expires.
func (c *MemoryCache) Set(_ context.Context, key core.CacheKey, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.store.Set(key.String(), value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key core.CacheKey) error {
	c.store.Delete(key.String())
	return nil
}

func (c *MemoryCache) Flush() {
	c.store.Flush()
}
