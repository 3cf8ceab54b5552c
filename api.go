package optiq

import (
	"context"
	"time"
)

// Client is the mutation surface handed to application code: update
// mutations (with optimistic/undoable coordination), explicit cache
// invalidation, and audit logging.
type Client interface {
	Update(ctx context.Context, p UpdateParams) (*UpdateResult, error)
	Invalidate(ctx context.Context, p InvalidateParams) error
	Log(ctx context.Context, p LogParams) error
	UpdateLog(ctx context.Context, p UpdateLogParams) error

	// Store exposes the underlying cache, e.g. for seeding query results or
	// subscribing to refetch signals.
	Store() Store

	Close(ctx context.Context) error
}

// Options configure a Client.
// Only Resources and Providers are required; others have sensible defaults.
type Options struct {
	// Required.
	Resources []Resource
	Providers map[string]DataProvider // keyed by name; "default" is the fallback

	// Store is the query cache. Nil builds an in-memory JSON store.
	Store Store

	Logger   Logger        // nil => NopLogger
	Hooks    Hooks         // nil => NopHooks
	Notifier Notifier      // nil => NopNotifier
	Live     LivePublisher // nil => NopLivePublisher
	Audit    AuditLogger   // nil => NopAuditLogger
	Auth     AuthHook      // nil => NopAuthHook

	// UndoTimeout is the default undo window for Undoable mutations.
	// 0 => 5s.
	UndoTimeout time.Duration

	// RouteParams supplies router-derived meta for the current call; merged
	// between resource meta and per-call meta.
	RouteParams func(ctx context.Context) Meta

	// TransportMetaKeys are stripped from the meta handed to invalidation
	// and side-effect dispatchers (the full meta still reaches the data
	// provider). nil => gqlQuery, gqlMutation.
	TransportMetaKeys []string
}

// New validates opts and builds a Client.
func New(opts Options) (Client, error) {
	return newClient(opts)
}
