package cache

import (
	"context"
	"errors"
	"time"
)

// TieredCache puts a fast front cache (usually a [MemoryCache]) before a
// slower shared one. Get consults the front first and back-fills it on a hit
// in the back; Set and Delete go to both tiers.
type TieredCache struct {
	front Cache
	back  Cache
	ttl   time.Duration
}

// NewTieredCache layers front over back. Entries promoted from back are kept
// in front for ttl, or [DefaultTTL] when ttl is zero.
func NewTieredCache(front, back Cache, ttl time.Duration) *TieredCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TieredCache{front: front, back: back, ttl: ttl}
}

// Back returns the slower tier.
func (c *TieredCache) Back() Cache { return c.back }

// Get retrieves a value from the first tier that has it.
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := c.front.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, ok, err := c.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.front.Set(ctx, key, data, c.ttl)
	return data, true, nil
}

// Set stores a value in both tiers.
func (c *TieredCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_ = c.front.Set(ctx, key, data, ttl)
	return c.back.Set(ctx, key, data, ttl)
}

// Delete removes a value from both tiers.
func (c *TieredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.front.Delete(ctx, key), c.back.Delete(ctx, key))
}

// Close closes both tiers.
func (c *TieredCache) Close() error {
	return errors.Join(c.front.Close(), c.back.Close())
}

var _ Cache = (*TieredCache)(nil)
