package optiq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/unkn0wn-root/optiq/codec"
	"github.com/unkn0wn-root/optiq/internal/wire"
	"github.com/unkn0wn-root/optiq/provider"
	"github.com/unkn0wn-root/optiq/verstore"
)

const (
	defaultNamespace        = "optiq"
	defaultTTL              = 10 * time.Minute
	defaultSweep            = time.Hour
	defaultVersionRetention = 30 * 24 * time.Hour
)

// EventType classifies store notifications delivered to subscribers.
type EventType string

const (
	EventUpdated     EventType = "updated"
	EventInvalidated EventType = "invalidated"
	EventRestored    EventType = "restored"
)

// Event is delivered to subscribers whose prefix matches the affected key.
type Event struct {
	Key  Key
	Type EventType
}

// RefetchType filters which entries get refetch notifications (and eager
// deletion) during invalidation.
//
//   - RefetchActive: entries with at least one matching subscriber are
//     deleted and notified; unsubscribed entries are only version-bumped and
//     self-heal lazily on their next read.
//   - RefetchAll: every matching entry is deleted and notified.
//   - RefetchNone: versions are bumped, nothing is deleted or notified.
type RefetchType int

const (
	RefetchActive RefetchType = iota
	RefetchAll
	RefetchNone
)

// Snapshot is the captured prior state of one cache entry, owned by the
// in-flight mutation that captured it until commit or rollback. Restore
// writes the captured payload back byte-for-byte.
type Snapshot struct {
	Key Key

	kind    byte
	payload []byte
	version uint64
}

// SetCostFunc lets cost-based providers (Ristretto) weigh entries.
type SetCostFunc func(storageKey string, raw []byte) int64

// Store is the query cache the orchestrator mutates: versioned entries
// addressed by hierarchical keys, with snapshot capture, verbatim restore,
// prefix invalidation and prefix-scoped subscriptions.
type Store interface {
	Enabled() bool
	Close(ctx context.Context) error

	GetRecord(ctx context.Context, key Key) (Record, bool, error)
	SetRecord(ctx context.Context, key Key, rec Record) error
	GetList(ctx context.Context, key Key) ([]Record, bool, error)
	SetList(ctx context.Context, key Key, list []Record) error

	// Snapshot captures the entry's current payload; (nil, false, nil) when
	// the entry is absent or stale.
	Snapshot(ctx context.Context, key Key) (*Snapshot, bool, error)
	// SnapshotMany captures snapshots for the listed keys using one bulk
	// version read. Absent and stale entries are skipped, not errors.
	SnapshotMany(ctx context.Context, keys []Key) ([]*Snapshot, error)
	// Restore writes a captured snapshot back verbatim under a fresh version.
	Restore(ctx context.Context, snap *Snapshot) error

	// Invalidate bumps versions for every entry under prefix; see RefetchType
	// for deletion/notification behavior.
	Invalidate(ctx context.Context, prefix Key, refetch RefetchType) error

	// KeysWithPrefix lists live entry keys under prefix in stable order.
	KeysWithPrefix(prefix Key) []Key

	// Subscribe registers fn for events on keys under prefix. Callbacks must
	// be cheap and non-blocking. The returned func removes the subscription.
	Subscribe(prefix Key, fn func(Event)) (cancel func())
}

// StoreOptions tune the cache store.
// Only Provider is required; others have sensible defaults.
type StoreOptions struct {
	// Required.
	Provider provider.Provider

	Codec            codec.Codec           // nil => codec.JSON{}
	Versions         verstore.VersionStore // nil => verstore.Local (in-process)
	Namespace        string                // "" => "optiq"
	Logger           Logger                // nil => NopLogger
	Hooks            Hooks                 // nil => NopHooks
	TTL              time.Duration         // 0 => 10m
	CleanupInterval  time.Duration         // local version store sweep; 0 => 1h
	VersionRetention time.Duration         // local version store retention; 0 => 30d
	ComputeSetCost   SetCostFunc           // default 1
	Disabled         bool                  // default false (enabled)
}

// NewStore builds a Store over a byte-store provider.
func NewStore(opts StoreOptions) (Store, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("optiq: provider is required")
	}

	s := &store{
		ns:       coalesce(opts.Namespace, defaultNamespace),
		provider: opts.Provider,
		enabled:  !opts.Disabled,
		index:    make(map[string]Key),
		subs:     make(map[int]*subscription),
	}

	// defaults
	if opts.Codec != nil {
		s.codec = opts.Codec
	} else {
		s.codec = codec.JSON{}
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.ttl = coalesce(opts.TTL, defaultTTL)

	if opts.ComputeSetCost != nil {
		s.computeSetCost = opts.ComputeSetCost
	} else {
		s.computeSetCost = func(_ string, _ []byte) int64 { return 1 }
	}

	if opts.Versions != nil {
		s.versions = opts.Versions
	} else {
		sweep := coalesce(opts.CleanupInterval, defaultSweep)
		retention := coalesce(opts.VersionRetention, defaultVersionRetention)
		s.versions = verstore.NewLocal(sweep, retention)
	}

	return s, nil
}

type subscription struct {
	prefix Key
	fn     func(Event)
}

type store struct {
	ns             string
	provider       provider.Provider
	codec          codec.Codec
	versions       verstore.VersionStore
	log            Logger
	hooks          Hooks
	enabled        bool
	ttl            time.Duration
	computeSetCost SetCostFunc

	mu      sync.RWMutex
	index   map[string]Key // storage key -> entry key, for prefix scans
	subs    map[int]*subscription
	nextSub int
}

func (s *store) Enabled() bool { return s.enabled }

func (s *store) Close(ctx context.Context) error {
	// Close version store first (best effort).
	if s.versions != nil {
		_ = s.versions.Close(ctx)
	}
	if s.provider != nil {
		return s.provider.Close(ctx)
	}
	return nil
}

func (s *store) storageKey(key Key) string {
	return "entry:" + s.ns + ":" + key.String()
}

func (s *store) GetRecord(ctx context.Context, key Key) (Record, bool, error) {
	payload, ok, err := s.getRaw(ctx, key, wire.KindRecord)
	if err != nil || !ok {
		return nil, false, err
	}
	rec, err := s.codec.DecodeRecord(payload)
	if err != nil {
		s.selfHeal(ctx, key, "decode")
		return nil, false, nil
	}
	return rec, true, nil
}

func (s *store) GetList(ctx context.Context, key Key) ([]Record, bool, error) {
	payload, ok, err := s.getRaw(ctx, key, wire.KindCollection)
	if err != nil || !ok {
		return nil, false, err
	}
	list, err := s.codec.DecodeList(payload)
	if err != nil {
		s.selfHeal(ctx, key, "decode")
		return nil, false, nil
	}
	return list, true, nil
}

func (s *store) SetRecord(ctx context.Context, key Key, rec Record) error {
	if !s.enabled {
		return nil
	}
	payload, err := s.codec.EncodeRecord(rec)
	if err != nil {
		return err
	}
	return s.writeRaw(ctx, key, wire.KindRecord, payload, EventUpdated)
}

func (s *store) SetList(ctx context.Context, key Key, list []Record) error {
	if !s.enabled {
		return nil
	}
	payload, err := s.codec.EncodeList(list)
	if err != nil {
		return err
	}
	return s.writeRaw(ctx, key, wire.KindCollection, payload, EventUpdated)
}

func (s *store) Snapshot(ctx context.Context, key Key) (*Snapshot, bool, error) {
	if !s.enabled {
		return nil, false, nil
	}
	sk := s.storageKey(key)
	raw, ok, err := s.provider.Get(ctx, sk)
	if err != nil || !ok {
		return nil, false, err
	}
	kind, version, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		s.selfHeal(ctx, key, "corrupt")
		return nil, false, nil
	}
	if version != s.snapshotVersion(ctx, sk) {
		s.selfHeal(ctx, key, "version_mismatch")
		return nil, false, nil
	}
	return &Snapshot{
		Key:     key,
		kind:    kind,
		payload: bytes.Clone(payload),
		version: version,
	}, true, nil
}

func (s *store) SnapshotMany(ctx context.Context, keys []Key) ([]*Snapshot, error) {
	if !s.enabled || len(keys) == 0 {
		return nil, nil
	}
	sks := make([]string, len(keys))
	for i, k := range keys {
		sks[i] = s.storageKey(k)
	}
	vers, err := s.versions.SnapshotMany(ctx, sks)
	if err != nil {
		s.hooks.VersionSnapshotError(len(sks), err)
		return nil, err
	}

	var out []*Snapshot
	for i, key := range keys {
		raw, ok, err := s.provider.Get(ctx, sks[i])
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		kind, version, payload, err := wire.DecodeEntry(raw)
		if err != nil {
			s.selfHeal(ctx, key, "corrupt")
			continue
		}
		if version != vers[sks[i]] {
			s.selfHeal(ctx, key, "version_mismatch")
			continue
		}
		out = append(out, &Snapshot{
			Key:     key,
			kind:    kind,
			payload: bytes.Clone(payload),
			version: version,
		})
	}
	return out, nil
}

func (s *store) Restore(ctx context.Context, snap *Snapshot) error {
	if !s.enabled || snap == nil {
		return nil
	}
	return s.writeRaw(ctx, snap.Key, snap.kind, snap.payload, EventRestored)
}

func (s *store) Invalidate(ctx context.Context, prefix Key, refetch RefetchType) error {
	if !s.enabled {
		return nil
	}

	type target struct {
		sk  string
		key Key
	}
	var targets []target
	s.mu.RLock()
	for sk, key := range s.index {
		if key.HasPrefix(prefix) {
			targets = append(targets, target{sk: sk, key: key})
		}
	}
	s.mu.RUnlock()

	var errs []error
	for _, tg := range targets {
		_, bumpErr := s.versions.Bump(ctx, tg.sk)
		if bumpErr != nil {
			s.hooks.VersionBumpError(tg.sk, bumpErr)
		}

		eager := refetch == RefetchAll || (refetch == RefetchActive && s.hasSubscriber(tg.key))

		var delErr error
		if eager {
			delErr = s.provider.Del(ctx, tg.sk)
			if delErr == nil {
				s.dropIndex(tg.sk)
			}
		}

		switch {
		case bumpErr != nil && delErr != nil:
			s.hooks.InvalidateOutage(tg.sk, bumpErr, delErr)
			errs = append(errs, &InvalidateError{Key: tg.key.String(), BumpErr: bumpErr, DelErr: delErr})
		case bumpErr != nil:
			errs = append(errs, &InvalidateError{Key: tg.key.String(), BumpErr: bumpErr})
		case delErr != nil:
			errs = append(errs, &InvalidateError{Key: tg.key.String(), DelErr: delErr})
		}

		if refetch != RefetchNone {
			s.notify(Event{Key: tg.key, Type: EventInvalidated})
		}
	}

	s.log.Debug("invalidated prefix", Fields{"prefix": prefix.String(), "entries": len(targets)})
	return errors.Join(errs...)
}

func (s *store) KeysWithPrefix(prefix Key) []Key {
	if !s.enabled {
		return nil
	}
	var out []Key
	s.mu.RLock()
	for _, key := range s.index {
		if key.HasPrefix(prefix) {
			out = append(out, key)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (s *store) Subscribe(prefix Key, fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = &subscription{prefix: prefix, fn: fn}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *store) getRaw(ctx context.Context, key Key, wantKind byte) ([]byte, bool, error) {
	if !s.enabled {
		return nil, false, nil
	}
	sk := s.storageKey(key)
	raw, ok, err := s.provider.Get(ctx, sk)
	if err != nil || !ok {
		return nil, false, err
	}
	kind, version, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		s.selfHeal(ctx, key, "corrupt")
		return nil, false, nil
	}
	if version != s.snapshotVersion(ctx, sk) {
		s.selfHeal(ctx, key, "version_mismatch")
		return nil, false, nil
	}
	if kind != wantKind {
		// caller asked for the wrong shape; leave the entry alone
		s.log.Debug("kind mismatch on read", Fields{"key": key.String(), "kind": kind})
		return nil, false, nil
	}
	return payload, true, nil
}

func (s *store) writeRaw(ctx context.Context, key Key, kind byte, payload []byte, ev EventType) error {
	sk := s.storageKey(key)
	version, err := s.versions.Bump(ctx, sk)
	if err != nil {
		s.hooks.VersionBumpError(sk, err)
		return err
	}
	wireb := wire.EncodeEntry(kind, version, payload)
	ok, err := s.provider.Set(ctx, sk, wireb, s.computeSetCost(sk, wireb), s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.hooks.ProviderSetRejected(sk)
		s.log.Debug("set rejected by provider (pressure)", Fields{"key": key.String()})
		return nil
	}

	s.mu.Lock()
	s.index[sk] = key
	s.mu.Unlock()

	s.notify(Event{Key: key, Type: ev})
	return nil
}

func (s *store) snapshotVersion(ctx context.Context, storageKey string) uint64 {
	v, err := s.versions.Snapshot(ctx, storageKey)
	if err != nil {
		// conservative: treat as 0 so stale reads self-heal
		s.hooks.VersionSnapshotError(1, err)
		s.log.Warn("version snapshot error", Fields{"key": storageKey, "err": err})
		return 0
	}
	return v
}

func (s *store) selfHeal(ctx context.Context, key Key, reason string) {
	sk := s.storageKey(key)
	_ = s.provider.Del(ctx, sk)
	s.dropIndex(sk)
	s.hooks.SelfHealEntry(sk, reason)
}

func (s *store) dropIndex(storageKey string) {
	s.mu.Lock()
	delete(s.index, storageKey)
	s.mu.Unlock()
}

func (s *store) hasSubscriber(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if key.HasPrefix(sub.prefix) {
			return true
		}
	}
	return false
}

// notify calls matching subscriber callbacks outside the store lock so a
// callback may re-enter the store.
func (s *store) notify(ev Event) {
	var fns []func(Event)
	s.mu.RLock()
	for _, sub := range s.subs {
		if ev.Key.HasPrefix(sub.prefix) {
			fns = append(fns, sub.fn)
		}
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
