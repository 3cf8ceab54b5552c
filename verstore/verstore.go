// Package verstore tracks per-entry cache versions.
//
// Every committed write to a cache entry carries the version current at
// write time; reads validate the embedded version against the store and
// self-heal on mismatch. Invalidation is a version bump: entries written
// under an older version become unreadable even if the byte store still
// holds them.
package verstore

import (
	"context"
	"time"
)

// VersionStore abstracts where entry versions live.
// Use Local (default) for in-process versions, or Redis for versions shared
// across replicas.
type VersionStore interface {
	// Snapshot returns the current version; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// SnapshotMany returns versions for many keys; missing => 0.
	SnapshotMany(ctx context.Context, storageKeys []string) (map[string]uint64, error)
	// Bump atomically increments and returns the new version.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
