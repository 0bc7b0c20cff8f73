// Package cache stores API responses keyed by their canonical request key.
//
// Entries never expire: the data behind a given request is treated as
// immutable for the lifetime of the process, so there is no eviction, TTL or
// invalidation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/s0up4200/wgapi/config"
)

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Entry is one cached response page
type Entry struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta,omitempty"`
}

// Cache maps canonical request keys to responses
type Cache interface {
	// Get returns the entry for key and whether it was present
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Put stores an entry under key
	Put(ctx context.Context, key string, entry Entry) error
}

var (
	defaultOnce  sync.Once
	defaultCache *Memory
)

// Default returns the process-wide in-memory cache
func Default() *Memory {
	defaultOnce.Do(func() {
		defaultCache = NewMemory()
	})
	return defaultCache
}

// New creates the cache backend selected by cfg
func New(cfg config.CacheConfig) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return Default(), nil
	case BackendRedis:
		return NewRedis(RedisConfig{
			Address:   cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			Database:  cfg.Redis.DB,
			KeyPrefix: cfg.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
