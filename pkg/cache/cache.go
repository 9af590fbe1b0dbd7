// Package cache stores rendered exports so that replaying an unchanged
// session script can skip the editor entirely.
//
// Keys are content hashes of everything that affects the output: the
// script bytes, the background image bytes, the editor settings and the
// export options. See [ExportKey].
package cache

import (
	"context"
	"time"
)

// ExportTTL is how long a rendered export stays valid.
const ExportTTL = 7 * 24 * time.Hour

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
