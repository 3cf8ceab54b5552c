// Package sloghooks logs optiq hook events through log/slog, with sampling
// for the chatty ones.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/optiq"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery   uint64
	OptimisticEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr   atomic.Uint64
	optimisticCtr atomic.Uint64
}

var _ optiq.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHealEntry(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("optiq.self_heal_entry",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("optiq.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) VersionSnapshotError(count int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("optiq.version_snapshot_error",
		"count", count,
		"err", err)
}

func (h *Hooks) VersionBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("optiq.version_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(storageKey string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("optiq.invalidate_outage",
		"key", h.redact(storageKey),
		"bump_err", bumpErr,
		"del_err", delErr)
}

func (h *Hooks) OptimisticApplied(resource string, entries int) {
	if h.l == nil || !sample(h.opts.OptimisticEvery, &h.optimisticCtr) {
		return
	}
	h.l.Debug("optiq.optimistic_applied",
		"resource", resource,
		"entries", entries)
}

func (h *Hooks) RollbackPerformed(resource string, entries int, reason string) {
	if h.l == nil {
		return
	}
	h.l.Info("optiq.rollback_performed",
		"resource", resource,
		"entries", entries,
		"reason", reason)
}

func (h *Hooks) MutationCancelled(resource string) {
	if h.l == nil {
		return
	}
	h.l.Info("optiq.mutation_cancelled",
		"resource", resource)
}
