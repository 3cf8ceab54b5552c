package optiq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MutationMode selects how Update coordinates the cache with the data
// provider.
type MutationMode int

const (
	// Pessimistic calls the provider first and only then touches the cache.
	Pessimistic MutationMode = iota
	// Optimistic patches matching cache entries before the provider call and
	// rolls them back if it fails.
	Optimistic
	// Undoable patches like Optimistic but holds the provider call for an
	// undo window; cancelling restores the cache and skips the call.
	Undoable
)

// UndoToken cancels an undoable mutation. Cancellation is cooperative: it
// only has effect while the orchestrator is still waiting out the undo
// window; once the provider call has started it runs to completion.
type UndoToken struct {
	once sync.Once
	done chan struct{}
}

func NewUndoToken() *UndoToken {
	return &UndoToken{done: make(chan struct{})}
}

// Cancel requests cancellation. Returns true on the first call.
func (t *UndoToken) Cancel() bool {
	first := false
	t.once.Do(func() {
		first = true
		close(t.done)
	})
	return first
}

// Done is closed once the token is cancelled.
func (t *UndoToken) Done() <-chan struct{} { return t.done }

// Cancelled reports whether Cancel has been called.
func (t *UndoToken) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// UpdateParams describes one update mutation. Resource and ID are required;
// Values is a partial patch merged into the target record.
type UpdateParams struct {
	Resource string
	ID       any
	Values   Record
	Mode     MutationMode

	// UndoTimeout overrides Options.UndoTimeout for this call (Undoable only).
	UndoTimeout time.Duration
	// Undo is the cancellation token for Undoable mode. When nil, a token is
	// created internally and exposed only through the progress notification.
	Undo *UndoToken

	// Policy selects how each cache scope is patched during the optimistic
	// phase. The zero value applies the default merge everywhere.
	Policy UpdateMap

	// Meta is merged over the resource meta and router params; transport
	// payload keys are stripped before it reaches side-effect dispatchers.
	Meta Meta

	// DataProviderName overrides the resource's data provider.
	DataProviderName string

	// Invalidates lists the scopes refreshed after a successful commit.
	// nil means the default (list, many, detail); an empty non-nil slice
	// disables invalidation.
	Invalidates []Scope
}

// UpdateResult carries the provider's response data.
type UpdateResult struct {
	Data Record
}

var defaultUpdateScopes = []Scope{ScopeList, ScopeMany, ScopeDetail}

// Update runs one mutation through the configured mode and reconciles the
// cache with its outcome. The provider is invoked at most once; provider
// errors are returned to the caller unchanged after every captured snapshot
// has been restored.
func (c *client) Update(ctx context.Context, p UpdateParams) (*UpdateResult, error) {
	if p.Resource == "" {
		return nil, fmt.Errorf("optiq: resource is required")
	}
	// normalized: a nil or empty id would degenerate the detail key into a
	// prefix covering every detail entry of the resource
	id := NormalizeID(p.ID)
	if id == "" {
		return nil, fmt.Errorf("optiq: id is required")
	}

	res, err := ResolveResource(c.resources, p.Resource)
	if err != nil {
		return nil, err
	}

	dpName := first(p.DataProviderName, res.DataProviderName, DefaultProviderName)
	dp, ok := c.providers[dpName]
	if !ok {
		return nil, fmt.Errorf("optiq: data provider %q not configured", dpName)
	}

	fullMeta := mergeMeta(res.Meta, c.routeParams(ctx), p.Meta)
	sideMeta := stripMetaKeys(fullMeta, c.transportMetaKeys)

	resSeg := res.Key()
	detailPrefix := BuildKey(dpName, resSeg, ActionOne, id)
	listPrefix := BuildKey(dpName, resSeg, ActionList, "")
	manyPrefix := BuildKey(dpName, resSeg, ActionMany, "")

	var (
		snaps      []*Snapshot
		prevDetail Record
	)
	if p.Mode != Pessimistic {
		snaps, prevDetail, err = c.applyOptimistic(ctx, p.Policy, detailPrefix, listPrefix, manyPrefix, p.Values, id)
		if err != nil {
			c.rollback(ctx, res.Name, snaps, "apply_error")
			return nil, err
		}
		c.hooks.OptimisticApplied(res.Name, len(snaps))
	} else if prev, ok, getErr := c.store.GetRecord(ctx, detailPrefix); getErr == nil && ok {
		// audit log wants the pre-mutation detail state in every mode
		prevDetail = prev
	}

	if p.Mode == Undoable {
		token := p.Undo
		if token == nil {
			token = NewUndoToken()
		}
		timeout := coalesce(p.UndoTimeout, c.undoTimeout)

		c.notifier.Open(Notification{
			Key:         fmt.Sprintf("%s-%s-notification", id, resSeg),
			Message:     "mutation scheduled",
			Type:        NotificationProgress,
			UndoTimeout: timeout,
			Cancel:      token.Cancel,
		})

		timer := time.NewTimer(timeout)
		select {
		case <-timer.C:
		case <-token.Done():
			timer.Stop()
			c.rollback(context.WithoutCancel(ctx), res.Name, snaps, "cancelled")
			c.hooks.MutationCancelled(res.Name)
			return nil, ErrMutationCancelled
		case <-ctx.Done():
			timer.Stop()
			c.rollback(context.WithoutCancel(ctx), res.Name, snaps, "context")
			return nil, ctx.Err()
		}
	}

	resp, err := dp.Update(ctx, res.Name, p.ID, p.Values, fullMeta)
	if err != nil {
		c.rollback(context.WithoutCancel(ctx), res.Name, snaps, "provider_error")
		c.onUpdateError(ctx, resSeg, id, err)
		return nil, err
	}

	c.onUpdateSuccess(ctx, p, res, dpName, id, resp, prevDetail, sideMeta)

	result := &UpdateResult{}
	if resp != nil {
		result.Data = resp.Data
	}
	return result, nil
}

// applyOptimistic patches every matching cache entry per the policy. One
// bulk snapshot capture runs per scope, strictly before any write to that
// scope. Returned snapshots include entries the policy left unmutated;
// restoring them is harmless and keeps rollback unconditional.
func (c *client) applyOptimistic(
	ctx context.Context,
	policy UpdateMap,
	detailPrefix, listPrefix, manyPrefix Key,
	values Record,
	id string,
) ([]*Snapshot, Record, error) {
	var (
		snaps      []*Snapshot
		prevDetail Record
	)

	if !policy.Detail.skip {
		scopeSnaps, err := c.store.SnapshotMany(ctx, c.store.KeysWithPrefix(detailPrefix))
		if err != nil {
			return snaps, prevDetail, err
		}
		for _, snap := range scopeSnaps {
			prev, ok, err := c.store.GetRecord(ctx, snap.Key)
			if err != nil || !ok {
				continue
			}
			snaps = append(snaps, snap)
			if prevDetail == nil {
				prevDetail = prev
			}
			next, changed := policy.Detail.apply(prev, values, id)
			if !changed {
				continue
			}
			if err := c.store.SetRecord(ctx, snap.Key, next); err != nil {
				return snaps, prevDetail, err
			}
		}
	}

	for _, sc := range []struct {
		prefix Key
		policy ListPolicy
	}{
		{listPrefix, policy.List},
		{manyPrefix, policy.Many},
	} {
		if sc.policy.skip {
			continue
		}
		scopeSnaps, err := c.store.SnapshotMany(ctx, c.store.KeysWithPrefix(sc.prefix))
		if err != nil {
			return snaps, prevDetail, err
		}
		for _, snap := range scopeSnaps {
			prev, ok, err := c.store.GetList(ctx, snap.Key)
			if err != nil || !ok {
				continue
			}
			snaps = append(snaps, snap)
			next, changed := sc.policy.apply(prev, values, id)
			if !changed {
				continue
			}
			if err := c.store.SetList(ctx, snap.Key, next); err != nil {
				return snaps, prevDetail, err
			}
		}
	}

	return snaps, prevDetail, nil
}

// rollback restores captured snapshots in reverse capture order. Restore
// failures are logged, not propagated: the original mutation error is the
// one the caller needs.
func (c *client) rollback(ctx context.Context, resource string, snaps []*Snapshot, reason string) {
	if len(snaps) == 0 {
		return
	}
	for i := len(snaps) - 1; i >= 0; i-- {
		if err := c.store.Restore(ctx, snaps[i]); err != nil {
			c.log.Error("snapshot restore failed", Fields{
				"key": snaps[i].Key.String(), "reason": reason, "err": err,
			})
		}
	}
	c.hooks.RollbackPerformed(resource, len(snaps), reason)
}

func (c *client) onUpdateSuccess(
	ctx context.Context,
	p UpdateParams,
	res Resource,
	dpName, id string,
	resp *UpdateResponse,
	prevDetail Record,
	sideMeta Meta,
) {
	scopes := p.Invalidates
	if scopes == nil {
		scopes = defaultUpdateScopes
	}
	if err := c.Invalidate(ctx, InvalidateParams{
		Resource:         p.Resource,
		ID:               p.ID,
		DataProviderName: dpName,
		Scopes:           scopes,
	}); err != nil {
		c.log.Warn("post-commit invalidation failed", Fields{"resource": res.Name, "err": err})
	}

	c.notifier.Open(Notification{
		Key:     fmt.Sprintf("%s-%s-notification", id, res.Key()),
		Message: "successfully updated",
		Type:    NotificationSuccess,
	})

	c.live.Publish(LiveEvent{
		Channel: "resources/" + res.Name,
		Type:    "updated",
		Payload: LivePayload{IDs: responseIDs(resp, p.ID)},
		Date:    time.Now(),
		Meta:    sideMeta,
	})

	if err := c.Log(ctx, LogParams{
		Action:       "update",
		Resource:     p.Resource,
		Data:         p.Values,
		PreviousData: prevDetail,
		Meta:         Meta{"id": p.ID},
	}); err != nil {
		c.log.Warn("audit log failed", Fields{"resource": res.Name, "err": err})
	}
}

func (c *client) onUpdateError(ctx context.Context, resSeg, id string, err error) {
	if hookErr := c.auth.OnError(ctx, err); hookErr != nil {
		c.log.Warn("auth error hook failed", Fields{"err": hookErr})
	}

	n := Notification{
		Key:         fmt.Sprintf("%s-%s-notification", id, resSeg),
		Message:     "update failed",
		Description: err.Error(),
		Type:        NotificationError,
	}
	var dpErr *DataProviderError
	if errors.As(err, &dpErr) && dpErr.StatusCode != 0 {
		n.Message = fmt.Sprintf("update failed (status %d)", dpErr.StatusCode)
	}
	c.notifier.Open(n)
}

// responseIDs extracts the affected ids from the provider response, falling
// back to the mutation's own id.
func responseIDs(resp *UpdateResponse, fallback any) []any {
	if resp != nil && resp.Data != nil {
		if v, ok := resp.Data["id"]; ok {
			return []any{v}
		}
	}
	return []any{fallback}
}
