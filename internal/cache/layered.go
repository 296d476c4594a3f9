package cache

import (
	"context"
	"time"
)

// LayeredCache implements a two-layer cache: a fast layer in front of a durable one
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a memory + disk cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return NewLayeredCacheOf(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(diskDir, diskTTL))
}

// NewLayeredCacheOf stacks any two caches, e.g. memory in front of Redis
func NewLayeredCacheOf(front, back Cache) *LayeredCache {
	return &LayeredCache{memory: front, disk: back}
}

// Get checks the front layer first, then the back layer, promoting hits
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found := c.memory.Get(ctx, key); found {
		return val, true
	}

	if val, found := c.disk.Get(ctx, key); found {
		// Promote with the front layer's default TTL
		_ = c.memory.Set(ctx, key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(ctx, key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	_ = c.memory.Delete(ctx, key)
	return c.disk.Delete(ctx, key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear(ctx context.Context) error {
	_ = c.memory.Clear(ctx)
	return c.disk.Clear(ctx)
}

// Prune forwards to every layer that supports pruning
func (c *LayeredCache) Prune(ctx context.Context) (int, error) {
	total := 0
	for _, layer := range []Cache{c.memory, c.disk} {
		p, ok := layer.(Pruner)
		if !ok {
			continue
		}
		n, err := p.Prune(ctx)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
