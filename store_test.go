package optiq

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/unkn0wn-root/optiq/provider/memory"
)

func newTestStore(t *testing.T, mod func(*StoreOptions)) Store {
	t.Helper()
	opts := StoreOptions{
		Provider:  memory.New(),
		Namespace: "test",
	}
	if mod != nil {
		mod(&opts)
	}
	st, err := NewStore(opts)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func mustImpl(t *testing.T, st Store) *store {
	t.Helper()
	impl, ok := st.(*store)
	if !ok {
		t.Fatalf("unexpected concrete type for Store")
	}
	return impl
}

func TestStoreRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	key := BuildKey("default", "posts", ActionOne, "1")

	if _, ok, err := st.GetRecord(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	rec := Record{"id": "1", "title": "A"}
	if err := st.SetRecord(ctx, key, rec); err != nil {
		t.Fatalf("SetRecord: %v", err)
	}
	got := mustGetRecord(t, st, key)
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("got %v want %v", got, rec)
	}

	// record key never answers list reads
	if _, ok, _ := st.GetList(ctx, key); ok {
		t.Fatalf("list read hit a record entry")
	}
}

func TestStoreSnapshotRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	key := BuildKey("default", "posts", ActionOne, "1")
	orig := Record{"id": "1", "title": "A", "n": "x"}

	if err := st.SetRecord(ctx, key, orig); err != nil {
		t.Fatalf("SetRecord: %v", err)
	}
	snap, ok, err := st.Snapshot(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Snapshot: ok=%v err=%v", ok, err)
	}

	if err := st.SetRecord(ctx, key, Record{"id": "1", "title": "B"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := st.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got := mustGetRecord(t, st, key)
	if !reflect.DeepEqual(got, orig) {
		t.Fatalf("restore mismatch: got %v want %v", got, orig)
	}
}

func TestStoreSnapshotManySkipsStaleAndAbsent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	k1 := BuildKey("default", "posts", ActionOne, "1")
	k2 := BuildKey("default", "posts", ActionOne, "2")
	k3 := BuildKey("default", "posts", ActionOne, "404")
	orig := Record{"id": "1", "title": "A"}

	if err := st.SetRecord(ctx, k1, orig); err != nil {
		t.Fatalf("SetRecord: %v", err)
	}
	if err := st.SetRecord(ctx, k2, Record{"id": "2"}); err != nil {
		t.Fatalf("SetRecord: %v", err)
	}
	// bump k2's version past the stored entry, making it stale
	if err := st.Invalidate(ctx, k2, RefetchNone); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	snaps, err := st.SnapshotMany(ctx, []Key{k1, k2, k3})
	if err != nil {
		t.Fatalf("SnapshotMany: %v", err)
	}
	if len(snaps) != 1 || !snaps[0].Key.Equal(k1) {
		t.Fatalf("expected only the live entry, got %v", snaps)
	}

	// captured snapshot restores like a single-key one
	if err := st.SetRecord(ctx, k1, Record{"id": "1", "title": "B"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := st.Restore(ctx, snaps[0]); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got := mustGetRecord(t, st, k1)
	if !reflect.DeepEqual(got, orig) {
		t.Fatalf("restore mismatch: got %v want %v", got, orig)
	}
}

func TestStoreSnapshotMissesAbsentEntry(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	key := BuildKey("default", "posts", ActionOne, "404")

	snap, ok, err := st.Snapshot(ctx, key)
	if err != nil || ok || snap != nil {
		t.Fatalf("expected miss, snap=%v ok=%v err=%v", snap, ok, err)
	}
}

func TestStoreInvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)

	postList := BuildKey("default", "posts", ActionList, "")
	postDetail := BuildKey("default", "posts", ActionOne, "1")
	userList := BuildKey("default", "users", ActionList, "")

	_ = st.SetList(ctx, postList, []Record{{"id": "1"}})
	_ = st.SetRecord(ctx, postDetail, Record{"id": "1"})
	_ = st.SetList(ctx, userList, []Record{{"id": "9"}})

	if err := st.Invalidate(ctx, ResourceKey("default", "posts"), RefetchAll); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	if _, ok, _ := st.GetList(ctx, postList); ok {
		t.Fatalf("post list survived invalidation")
	}
	if _, ok, _ := st.GetRecord(ctx, postDetail); ok {
		t.Fatalf("post detail survived invalidation")
	}
	if _, ok, _ := st.GetList(ctx, userList); !ok {
		t.Fatalf("unrelated resource was invalidated")
	}
}

func TestStoreRefetchNoneBumpsWithoutEvents(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	key := BuildKey("default", "posts", ActionOne, "1")
	_ = st.SetRecord(ctx, key, Record{"id": "1"})

	var mu sync.Mutex
	var events []Event
	cancel := st.Subscribe(ProviderKey("default"), func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	defer cancel()

	if err := st.Invalidate(ctx, key, RefetchNone); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	mu.Lock()
	n := len(events)
	mu.Unlock()
	if n != 0 {
		t.Fatalf("RefetchNone emitted %d events", n)
	}
	// entry is stale regardless: the version moved on
	if _, ok, _ := st.GetRecord(ctx, key); ok {
		t.Fatalf("stale entry still readable")
	}
}

func TestStoreSubscribeEvents(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	key := BuildKey("default", "posts", ActionOne, "1")

	var mu sync.Mutex
	var got []EventType
	cancel := st.Subscribe(ResourceKey("default", "posts"), func(ev Event) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	})

	_ = st.SetRecord(ctx, key, Record{"id": "1", "title": "A"})
	snap, _, _ := st.Snapshot(ctx, key)
	_ = st.SetRecord(ctx, key, Record{"id": "1", "title": "B"})
	_ = st.Restore(ctx, snap)
	_ = st.Invalidate(ctx, key, RefetchActive)

	mu.Lock()
	want := []EventType{EventUpdated, EventUpdated, EventRestored, EventInvalidated}
	ok := reflect.DeepEqual(got, want)
	mu.Unlock()
	if !ok {
		t.Fatalf("events: got %v want %v", got, want)
	}

	cancel()
	_ = st.SetRecord(ctx, key, Record{"id": "1"})
	mu.Lock()
	n := len(got)
	mu.Unlock()
	if n != len(want) {
		t.Fatalf("subscription fired after cancel")
	}
}

func TestStoreSelfHealsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mp := memory.New()
	st := newTestStore(t, func(o *StoreOptions) { o.Provider = mp })
	impl := mustImpl(t, st)
	key := BuildKey("default", "posts", ActionOne, "1")

	_ = st.SetRecord(ctx, key, Record{"id": "1"})
	// scribble over the stored bytes
	if _, err := mp.Set(ctx, impl.storageKey(key), []byte("garbage"), 1, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok, err := st.GetRecord(ctx, key); err != nil || ok {
		t.Fatalf("corrupt entry must read as miss, ok=%v err=%v", ok, err)
	}
	// the corrupt bytes were dropped
	if _, ok, _ := mp.Get(ctx, impl.storageKey(key)); ok {
		t.Fatalf("corrupt entry not deleted")
	}
}

func TestStoreKeysWithPrefixStableOrder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)

	k1 := BuildKey("default", "posts", ActionList, "")
	k2 := BuildKey("default", "posts", ActionOne, "1")
	k3 := BuildKey("default", "posts", ActionOne, "2")
	_ = st.SetList(ctx, k1, nil)
	_ = st.SetRecord(ctx, k2, Record{"id": "1"})
	_ = st.SetRecord(ctx, k3, Record{"id": "2"})

	keys := st.KeysWithPrefix(ResourceKey("default", "posts"))
	if len(keys) != 3 {
		t.Fatalf("keys: %d", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1].String() >= keys[i].String() {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}

	one := st.KeysWithPrefix(BuildKey("default", "posts", ActionOne, "1"))
	if len(one) != 1 || !one[0].Equal(k2) {
		t.Fatalf("exact prefix: %v", one)
	}
}

func TestStoreDisabled(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, func(o *StoreOptions) { o.Disabled = true })
	key := BuildKey("default", "posts", ActionOne, "1")

	if st.Enabled() {
		t.Fatalf("store should report disabled")
	}
	if err := st.SetRecord(ctx, key, Record{"id": "1"}); err != nil {
		t.Fatalf("SetRecord: %v", err)
	}
	if _, ok, _ := st.GetRecord(ctx, key); ok {
		t.Fatalf("disabled store returned a hit")
	}
	if keys := st.KeysWithPrefix(ProviderKey("default")); len(keys) != 0 {
		t.Fatalf("disabled store indexed keys: %v", keys)
	}
}
