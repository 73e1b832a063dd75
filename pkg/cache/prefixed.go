package cache

import (
	"context"
	"time"
)

// PrefixedCache prepends a fixed prefix to every key of an inner cache, so
// several applications can share one Redis database.
type PrefixedCache struct {
	inner  Cache
	prefix string
}

// Prefixed wraps c so that every key is prefixed. A nil c gives a
// [NullCache].
func Prefixed(c Cache, prefix string) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return &PrefixedCache{inner: c, prefix: prefix}
}

// Get retrieves the prefixed key from the inner cache.
func (c *PrefixedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores the prefixed key in the inner cache.
func (c *PrefixedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the prefixed key from the inner cache.
func (c *PrefixedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the inner cache.
func (c *PrefixedCache) Close() error {
	return c.inner.Close()
}

var _ Cache = (*PrefixedCache)(nil)
