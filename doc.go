// Package optiq orchestrates optimistic data mutations over a versioned
// query cache. It wraps an application's data-access layer (a DataProvider)
// and keeps cached query results consistent across three scopes per resource
// (detail, list, many) while an update is in flight.
//
// Components:
//   - Store: versioned cache addressed by hierarchical query keys; supports
//     snapshot capture, verbatim restore, prefix invalidation and
//     prefix-scoped subscriptions.
//   - Provider: byte store with TTL underneath the Store (memory, Ristretto,
//     BigCache, Redis).
//   - Codec: (de)serializes records and collections (JSON, msgpack, CBOR,
//     structpb).
//   - VersionStore: per-entry version counter. Local (in-process) by default,
//     optional Redis implementation for multi-replica setups.
//
// Mutation modes:
//
//	Pessimistic - call the provider first, touch the cache only on success.
//	Optimistic  - patch matching cache entries up front (capturing snapshots),
//	              then call the provider; roll the snapshots back on failure.
//	Undoable    - patch up front, then hold the provider call for an undo
//	              window; cancelling the UndoToken restores the snapshots and
//	              the provider is never called.
//
// Keys:
//
//	entry:<ns>:<dataProvider>:<resource>:<action>[:<id>]
//
// Snapshot/rollback pattern:
//
//	snaps := captureAndPatch(...)    // snapshot strictly before each write
//	resp, err := provider.Update(...)
//	if err != nil { restore(snaps) } // byte-for-byte prior payloads
package optiq
