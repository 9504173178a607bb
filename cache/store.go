// Package cache provides pluggable key/value storage for cached
// responses.
package cache

import (
	"context"
	"time"
)

// Store is the storage contract for cache entries.
// It stores and retrieves []byte values and keeps track of entry
// expiration.
//
// Implementations must be thread-safe!
type Store interface {
	// Get returns the value stored under the given key, or nil if the
	// key is absent or its entry has expired. An error from Get is
	// recoverable: callers treat it the same as a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the given value under the given key with the given
	// time to live. An empty value is a deletion request, not a request
	// to store an empty value. A zero ttl stores the value without
	// expiry. Backends with whole-second expiry resolution round a ttl
	// below one second down to no expiry; see the backend docs.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
