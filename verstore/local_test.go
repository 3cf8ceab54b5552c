package verstore

import (
	"context"
	"testing"
	"time"
)

func TestLocalSnapshotManyIncludesAllAndZeroForMissing(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	keys := []string{"a", "b", "c"}
	// bump b twice -> version=2
	if _, err := s.Bump(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Bump(ctx, "b"); err != nil {
		t.Fatal(err)
	}

	got, err := s.SnapshotMany(ctx, keys)
	if err != nil {
		t.Fatal(err)
	}

	if got["a"] != 0 || got["b"] != 2 || got["c"] != 0 {
		t.Fatalf("got=%v want a=0,b=2,c=0", got)
	}
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, time.Second) // retention=1s
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1200 * time.Millisecond)
	s.Cleanup(time.Second)

	v, err := s.Snapshot(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Fatalf("expected pruned -> 0, got %d", v)
	}
}
