// Package cache provides caching for pipeline artifacts.
//
// This package defines a backend-agnostic [Cache] interface with
// implementations for different deployments:
//   - file: On-disk cache for CLI usage
//   - memory: In-process cache for tests and single-instance servers
//   - redis: Shared cache for multi-instance server deployments
//   - null: Caching disabled
//
// # Architecture
//
// Values are opaque byte slices with a per-entry time-to-live. Callers
// marshal their own artifacts (parsed mixtures, packing results) and the
// backend only stores and expires them. A TTL of zero stores the entry
// without expiration.
//
// [Keyer] centralizes key construction so that every parameter that
// changes an artifact is part of its key. [ScopedKeyer] prefixes keys for
// tenant isolation on shared backends.
//
// # Usage
//
// Create a cache and keyer:
//
//	c, err := cache.NewFileCache(cache.DefaultDir())
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	keyer := cache.NewDefaultKeyer()
//
// Store and retrieve a packing result:
//
//	key := keyer.PackKey(mixtureHash, opts)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return decode(data)
//	}
//	result := pack(...)
//	c.Set(ctx, key, encode(result), 7*24*time.Hour)
package cache

import (
	"context"
	"time"
)

// Time-to-live for each artifact class. Mixtures may change upstream, so
// they expire daily. Packing results are keyed by every parameter that
// affects them and only expire to bound disk usage.
const (
	TTLMixture = 24 * time.Hour
	TTLResult  = 7 * 24 * time.Hour
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value by key. The boolean reports whether the key
	// was present and fresh; expired or absent entries are a miss, not an
	// error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key with the given time-to-live.
	// A ttl of zero stores the value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
