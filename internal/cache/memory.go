package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultMemoryEntries bounds the in-process layer; a lookup answer is a few KB
const DefaultMemoryEntries = 1000

// MemoryCache keeps backend answers in process with per-entry expiry.
// When full it evicts the entry closest to expiring.
type MemoryCache struct {
	items      *gocache.Cache
	maxEntries int
}

// NewMemoryCache creates a memory layer whose entries live for ttl
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items:      gocache.New(ttl, cleanupInterval),
		maxEntries: DefaultMemoryEntries,
	}
}

// Get returns a copy of the stored answer
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	if !ok {
		c.items.Delete(key)
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Set stores a copy of value; ttl 0 means the layer default
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	if _, exists := c.items.Get(key); !exists && c.items.ItemCount() >= c.maxEntries {
		c.makeRoom()
	}
	c.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete drops one entry
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear(_ context.Context) error {
	c.items.Flush()
	return nil
}

// Len reports the number of entries, expired ones included until cleanup
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}

// Prune drops expired entries
func (c *MemoryCache) Prune(_ context.Context) (int, error) {
	before := c.items.ItemCount()
	c.items.DeleteExpired()
	return before - c.items.ItemCount(), nil
}

func (c *MemoryCache) makeRoom() {
	c.items.DeleteExpired()
	if c.items.ItemCount() < c.maxEntries {
		return
	}

	var victim string
	var soonest int64
	for k, it := range c.items.Items() {
		if victim == "" || (it.Expiration != 0 && (soonest == 0 || it.Expiration < soonest)) {
			victim, soonest = k, it.Expiration
		}
	}
	c.items.Delete(victim)
}
