// Package cache stores learned models so repeated runs over the same data
// and hyperparameters skip the structure search.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for batch experiments on many hosts
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the dataset content and the
// flat hyperparameter map, so any change to either is a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Key types reported to observability hooks.
const (
	KeyTypeModel   = "model"
	KeyTypeDataset = "dataset"
)

// DefaultTTL is how long learned models stay cached.
const DefaultTTL = 30 * 24 * time.Hour
