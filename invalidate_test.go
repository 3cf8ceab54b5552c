package optiq

import (
	"context"
	"testing"
)

func TestInvalidateEmptyScopesIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	detailKey, _ := seedPost(t, env.cl.Store())

	if err := env.cl.Invalidate(ctx, InvalidateParams{Resource: "posts"}); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := env.cl.Store().GetRecord(ctx, detailKey); !ok {
		t.Fatalf("no-op invalidation dropped the entry")
	}
}

func TestInvalidateScopes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	st := env.cl.Store()
	detailKey, listKey := seedPost(t, st)
	manyKey := BuildKey(DefaultProviderName, "posts", ActionMany, "")
	_ = st.SetList(ctx, manyKey, []Record{{"id": "1"}})

	if err := env.cl.Invalidate(ctx, InvalidateParams{
		Resource: "posts",
		Scopes:   []Scope{ScopeList},
	}); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := st.GetList(ctx, listKey); ok {
		t.Fatalf("list survived its own scope")
	}
	if _, ok, _ := st.GetRecord(ctx, detailKey); !ok {
		t.Fatalf("detail dropped by list scope")
	}
	if _, ok, _ := st.GetList(ctx, manyKey); !ok {
		t.Fatalf("many dropped by list scope")
	}

	// detail without an id is skipped, resourceAll still clears the rest
	if err := env.cl.Invalidate(ctx, InvalidateParams{
		Resource: "posts",
		Scopes:   []Scope{ScopeDetail, ScopeResourceAll},
	}); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := st.GetRecord(ctx, detailKey); ok {
		t.Fatalf("resourceAll left the detail entry")
	}
	if _, ok, _ := st.GetList(ctx, manyKey); ok {
		t.Fatalf("resourceAll left the many entry")
	}
}

func TestInvalidateDetailScopeWithID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	st := env.cl.Store()
	detailKey, listKey := seedPost(t, st)
	otherDetail := BuildKey(DefaultProviderName, "posts", ActionOne, "2")
	_ = st.SetRecord(ctx, otherDetail, Record{"id": "2"})

	if err := env.cl.Invalidate(ctx, InvalidateParams{
		Resource: "posts",
		ID:       "1",
		Scopes:   []Scope{ScopeDetail},
	}); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := st.GetRecord(ctx, detailKey); ok {
		t.Fatalf("detail 1 survived")
	}
	if _, ok, _ := st.GetRecord(ctx, otherDetail); !ok {
		t.Fatalf("detail 2 dropped by a foreign id")
	}
	if _, ok, _ := st.GetList(ctx, listKey); !ok {
		t.Fatalf("list dropped by detail scope")
	}
}

func TestInvalidateUnknownResource(t *testing.T) {
	env := newTestEnv(t, nil)
	err := env.cl.Invalidate(context.Background(), InvalidateParams{
		Resource: "nope",
		Scopes:   []Scope{ScopeList},
	})
	if err == nil {
		t.Fatalf("expected resolution error")
	}
}
