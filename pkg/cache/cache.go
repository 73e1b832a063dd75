// Package cache provides the byte caches used by the logo fetcher.
//
// A [Cache] stores opaque values under string keys with an optional time to
// live. Three implementations are provided:
//
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for servers
//   - [NullCache]: stores nothing
//
// [Prefixed] namespaces the keys of any cache, and [GetJSON] / [SetJSON]
// store structured values. Keys are built with [Key], which hashes its parts
// so arbitrary references (URLs, paths) make safe keys.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value byte store with expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry
	// reports ok=false with a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
