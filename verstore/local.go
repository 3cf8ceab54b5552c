package verstore

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	Version   uint64
	UpdatedAt time.Time
}

// Local keeps versions in-process (default).
// Optional cleanup loop to prune long-inactive entries.
type Local struct {
	mu       sync.RWMutex
	versions map[string]localEntry
	ticker   *time.Ticker
	stopCh   chan struct{}
	wg       sync.WaitGroup

	retention time.Duration
}

var _ VersionStore = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{
		versions:  make(map[string]localEntry),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Snapshot(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	e, ok := s.versions[k]
	s.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	return e.Version, nil
}

// SnapshotMany acquires the read lock once and reads all requested keys.
// This avoids per-key lock/unlock overhead when the orchestrator captures
// snapshots for a whole scope.
func (s *Local) SnapshotMany(_ context.Context, ks []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(ks))
	s.mu.RLock()
	for _, k := range ks {
		out[k] = s.versions[k].Version // zero value (0) if missing
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Local) Bump(_ context.Context, k string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	e := s.versions[k]
	e.Version++
	e.UpdatedAt = now
	s.versions[k] = e
	s.mu.Unlock()
	return e.Version, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.versions {
		if !e.UpdatedAt.IsZero() && e.UpdatedAt.Before(cutoff) {
			delete(s.versions, k)
		}
	}
	s.mu.Unlock()
}

func (s *Local) Close(_ context.Context) error {
	if s.stopCh != nil {
		close(s.stopCh)
		if s.ticker != nil {
			s.ticker.Stop() // stop ticker before waiting
		}
		s.wg.Wait()
	}
	return nil
}
