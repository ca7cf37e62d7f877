// Package cache defines the keyed cache used to hold profiles, requested
// URLs and session attributes. Implementations must make Set, Get and Remove
// atomic per key; nothing here spans more than one key.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values with a per-entry expiry.
type Cache interface {
	// Set stores value under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value and true, or false when the key is missing or
	// expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
