package optiq

import (
	"context"
	"errors"
)

// Scope names a slice of a resource's cached queries for invalidation.
type Scope string

const (
	ScopeAll         Scope = "all"         // every entry of the data provider
	ScopeResourceAll Scope = "resourceAll" // every entry of the resource
	ScopeList        Scope = "list"
	ScopeMany        Scope = "many"
	ScopeDetail      Scope = "detail" // requires an id
)

// InvalidateParams selects what to invalidate. Empty Scopes is a no-op.
type InvalidateParams struct {
	Resource         string
	ID               any
	DataProviderName string
	Scopes           []Scope
	Refetch          RefetchType
}

// Invalidate resolves the resource and fans out over the requested scopes,
// invalidating every store entry whose key falls under each scope's prefix.
// A detail scope without an id is skipped with a warning; failed entries
// are collected, not fatal to the remaining scopes.
func (c *client) Invalidate(ctx context.Context, p InvalidateParams) error {
	if len(p.Scopes) == 0 {
		return nil
	}
	res, err := ResolveResource(c.resources, p.Resource)
	if err != nil {
		return err
	}
	dpName := first(p.DataProviderName, res.DataProviderName, DefaultProviderName)
	resSeg := res.Key()
	id := NormalizeID(p.ID)

	var errs []error
	for _, scope := range p.Scopes {
		var prefix Key
		switch scope {
		case ScopeAll:
			prefix = ProviderKey(dpName)
		case ScopeResourceAll:
			prefix = ResourceKey(dpName, resSeg)
		case ScopeList:
			prefix = BuildKey(dpName, resSeg, ActionList, "")
		case ScopeMany:
			prefix = BuildKey(dpName, resSeg, ActionMany, "")
		case ScopeDetail:
			if id == "" {
				c.log.Warn("detail invalidation skipped (no id)", Fields{"resource": p.Resource})
				continue
			}
			prefix = BuildKey(dpName, resSeg, ActionOne, id)
		default:
			c.log.Warn("unknown invalidation scope", Fields{"scope": string(scope)})
			continue
		}
		if err := c.store.Invalidate(ctx, prefix, p.Refetch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
