package optiq

import "context"

// LogParams describes one audit-log entry.
type LogParams struct {
	Action       string
	Resource     string
	Data         Record
	PreviousData Record
	Meta         Meta
	Author       Record
}

// UpdateLogParams patches an existing audit-log entry (e.g. renaming it).
type UpdateLogParams struct {
	ID   any
	Data Record
}

// AuditLogger persists audit entries. Owned externally; storage backends
// are out of scope.
type AuditLogger interface {
	Create(ctx context.Context, p LogParams) error
	Update(ctx context.Context, p UpdateLogParams) error
}

type NopAuditLogger struct{}

func (NopAuditLogger) Create(context.Context, LogParams) error       { return nil }
func (NopAuditLogger) Update(context.Context, UpdateLogParams) error { return nil }

// Log writes an audit entry for p.Action on p.Resource. When the resolved
// resource restricts audit actions and p.Action is not on the list, the
// entry is skipped silently - permission denial is not an error.
func (c *client) Log(ctx context.Context, p LogParams) error {
	res, err := ResolveResource(c.resources, p.Resource)
	if err == nil {
		if !res.auditAllowed(p.Action) {
			c.log.Debug("audit skipped (not permitted)", Fields{"resource": p.Resource, "action": p.Action})
			return nil
		}
		p.Resource = res.Name
	}
	return c.audit.Create(ctx, p)
}

// UpdateLog patches an existing audit entry.
func (c *client) UpdateLog(ctx context.Context, p UpdateLogParams) error {
	return c.audit.Update(ctx, p)
}
