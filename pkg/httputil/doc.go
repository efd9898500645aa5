// Package httputil provides HTTP utilities for fetching remote mixtures.
//
// # Overview
//
// This package provides the infrastructure behind every remote mixture
// source:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//   - [Client]: Cached, retrying fetch of mixture documents
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/spherepack/)
// with configurable TTL. This speeds up repeated runs against the same
// mixture URL and keeps the pipeline usable offline once a document has
// been fetched.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	ok, err := cache.Get("mixtures:glass", &data)  // Check cache
//	if !ok {
//	    data = fetchFromSource()
//	    cache.Set("mixtures:glass", data)          // Store for later
//	}
//
// Cache keys should be namespaced by source to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff to avoid hammering a struggling server:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetch()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/spherepack/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `spherepack cache clear` or by deleting
// the cache directory.
package httputil
