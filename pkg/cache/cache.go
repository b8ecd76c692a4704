// Package cache stores synthesized artifacts between runs.
//
// A [Cache] is a byte store with per-entry TTLs. [FileCache] serves the CLI,
// [RedisCache] serves a fleet of `prefixtower serve` instances, and
// [NullCache] disables caching. Keys come from a [Keyer] so every component
// derives the same key for the same design options.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for pipeline artifacts.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired
	// entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were dropped.
	Clear(ctx context.Context) (int, error)
}

// Entry lifetimes. Synthesis is deterministic, so artifacts only expire to
// bound disk and memory use.
const (
	TTLDesign   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLRank     = 30 * 24 * time.Hour
)
