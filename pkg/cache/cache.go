// Package cache stores parsed archive metadata between runs so that
// re-scanning a large package directory only parses archives that changed.
//
// Only per-archive records are cached. Dependency trees are always rebuilt
// from scratch.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [MemoryCache]: bounded in-process LRU, mainly for tests and long-lived callers
//   - [FileCache]: one JSON file per key under the XDG cache directory
//   - [RedisCache]: shared cache for CI machines scanning the same feed
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long archive records stay cached.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported as (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
