// Package cache stores rendered frames and simulated states.
//
// A seeded simulation is deterministic, so the same scene, configuration,
// cursor script, tick count and seed always produce the same frame. The
// pipeline keys its two stages by those inputs:
//
//   - simulation: the node state after N ticks (JSON)
//   - artifact: an encoded frame (SVG, PNG or text)
//
// Backends:
//
//   - [FileCache]: JSON entries on disk, for the CLI
//   - [RedisCache]: shared cache for the frame server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per stage.
const (
	SimulationTTL = 7 * 24 * time.Hour
	ArtifactTTL   = 7 * 24 * time.Hour
)
