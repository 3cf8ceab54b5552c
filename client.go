package optiq

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/optiq/provider/memory"
)

const defaultUndoTimeout = 5 * time.Second

var defaultTransportMetaKeys = []string{"gqlQuery", "gqlMutation"}

type client struct {
	resources []Resource
	providers map[string]DataProvider
	store     Store
	ownsStore bool

	log      Logger
	hooks    Hooks
	notifier Notifier
	live     LivePublisher
	audit    AuditLogger
	auth     AuthHook

	undoTimeout       time.Duration
	routeParamsFn     func(ctx context.Context) Meta
	transportMetaKeys []string
}

func newClient(opts Options) (*client, error) {
	if len(opts.Resources) == 0 {
		return nil, fmt.Errorf("optiq: at least one resource is required")
	}
	if len(opts.Providers) == 0 {
		return nil, fmt.Errorf("optiq: at least one data provider is required")
	}

	c := &client{
		resources: opts.Resources,
		providers: opts.Providers,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.notifier = coalesce[Notifier](opts.Notifier, NopNotifier{})
	c.live = coalesce[LivePublisher](opts.Live, NopLivePublisher{})
	c.audit = coalesce[AuditLogger](opts.Audit, NopAuditLogger{})
	c.auth = coalesce[AuthHook](opts.Auth, NopAuthHook{})
	c.undoTimeout = coalesce(opts.UndoTimeout, defaultUndoTimeout)
	c.routeParamsFn = opts.RouteParams

	if opts.TransportMetaKeys != nil {
		c.transportMetaKeys = opts.TransportMetaKeys
	} else {
		c.transportMetaKeys = defaultTransportMetaKeys
	}

	if opts.Store != nil {
		c.store = opts.Store
	} else {
		st, err := NewStore(StoreOptions{
			Provider: memory.New(),
			Logger:   c.log,
			Hooks:    c.hooks,
		})
		if err != nil {
			return nil, err
		}
		c.store = st
		c.ownsStore = true
	}

	return c, nil
}

func (c *client) Store() Store { return c.store }

// Close releases the store only when the client created it; injected
// stores stay open for their owner.
func (c *client) Close(ctx context.Context) error {
	if c.ownsStore {
		return c.store.Close(ctx)
	}
	return nil
}

func (c *client) routeParams(ctx context.Context) Meta {
	if c.routeParamsFn == nil {
		return nil
	}
	return c.routeParamsFn(ctx)
}
