// Package asynchook decouples hook consumers from the mutation hot path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	client, _ := optiq.New(optiq.Options{
//	    Resources: resources,
//	    Providers: providers,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
//
// Events are dropped, not queued, when the buffer is full: hooks are
// observability, never backpressure.
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/optiq"
)

type Hooks struct {
	inner optiq.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ optiq.Hooks = (*Hooks)(nil)

func New(inner optiq.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHealEntry(k, r string)            { h.try(func() { h.inner.SelfHealEntry(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)         { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) VersionBumpError(k string, err error) { h.try(func() { h.inner.VersionBumpError(k, err) }) }
func (h *Hooks) MutationCancelled(res string)         { h.try(func() { h.inner.MutationCancelled(res) }) }
func (h *Hooks) VersionSnapshotError(n int, err error) {
	h.try(func() { h.inner.VersionSnapshotError(n, err) })
}
func (h *Hooks) InvalidateOutage(k string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(k, be, de) })
}
func (h *Hooks) OptimisticApplied(res string, n int) {
	h.try(func() { h.inner.OptimisticApplied(res, n) })
}
func (h *Hooks) RollbackPerformed(res string, n int, reason string) {
	h.try(func() { h.inner.RollbackPerformed(res, n, reason) })
}
