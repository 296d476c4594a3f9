package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/util"
)

// KeyPrefix namespaces every key; bump the version when the cached shape changes
const KeyPrefix = "telcoscope:v1:"

// Cache stores raw backend responses by query key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Pruner is implemented by layers that can drop expired entries on demand
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// QueryKey generates a cache key for a lookup. Queries differing only in case,
// accents or spacing share a key; different providers and models do not.
func QueryKey(provider, modelName, query string) string {
	normalized := strings.Join(strings.Fields(util.Fold(query)), " ")
	hash := sha256.Sum256([]byte(provider + "\x00" + modelName + "\x00" + normalized))
	return KeyPrefix + hex.EncodeToString(hash[:])
}

// New builds the configured cache. A disabled cache returns (nil, nil).
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Backend) {
	case "", "layered":
		return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL), nil
	case "memory":
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(cfg.Dir, cfg.DiskTTL), nil
	case "redis":
		rc, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DiskTTL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: layered, memory, disk, redis)", cfg.Backend)
	}
}
