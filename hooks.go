package optiq

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the store and the update
// orchestrator call them on hot paths. Wrap with hooks/async for anything
// that does IO.
type Hooks interface {
	// A cache entry was deleted by the store on read.
	// reason ∈ {"corrupt", "version_mismatch", "decode"}
	SelfHealEntry(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// VersionStore errors (snapshot or bump).
	// count is the number of keys involved (1 for Snapshot/Bump, N for SnapshotMany).
	VersionSnapshotError(count int, err error)
	VersionBumpError(storageKey string, err error)

	// Both version bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(storageKey string, bumpErr, delErr error)

	// A mutation's optimistic phase patched `entries` cache entries.
	OptimisticApplied(resource string, entries int)

	// All snapshots of a mutation were restored.
	// reason ∈ {"provider_error", "cancelled", "context", "apply_error"}
	RollbackPerformed(resource string, entries int, reason string)

	// An undoable mutation was cancelled inside its undo window.
	MutationCancelled(resource string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) SelfHealEntry(string, string)          {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) VersionSnapshotError(int, error)       {}
func (NopHooks) VersionBumpError(string, error)        {}
func (NopHooks) InvalidateOutage(string, error, error) {}
func (NopHooks) OptimisticApplied(string, int)         {}
func (NopHooks) RollbackPerformed(string, int, string) {}
func (NopHooks) MutationCancelled(string)              {}
