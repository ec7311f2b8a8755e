// Package cache stores rendered models so unchanged jobs skip OpenSCAD.
//
// Rendering a clock body can take minutes. A render is fully determined by
// the formatted layout, the font, and the generator source, so its output is
// cached under a key derived from those inputs (see [Keyer.RenderKey]).
//
// Backends:
//   - [FileCache]: one JSON entry per key under the user cache directory
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// RenderTTL is how long rendered models stay cached.
const RenderTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// NullCache disables caching: every Get misses and Set discards.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
