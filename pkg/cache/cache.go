// Package cache memoises transform results.
//
// Three backends share the [Cache] interface:
//   - [NullCache] stores nothing (caching disabled)
//   - [FileCache] keeps one JSON file per entry under a directory
//   - [RedisCache] shares entries between server instances
//
// Keys come from a [Keyer], so that a document transformed with the same
// renames and the same rules always maps to the same entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
