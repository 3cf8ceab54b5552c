package optiq

import (
	"fmt"

	"github.com/unkn0wn-root/optiq/internal/util"
)

// Action identifies the query shape a cache entry was produced for.
// The set is closed; each action maps to an invalidation scope
// (list -> ScopeList, many -> ScopeMany, one -> ScopeDetail, all -> ScopeResourceAll).
type Action string

const (
	ActionList Action = "list"
	ActionMany Action = "many"
	ActionOne  Action = "one"
	ActionAll  Action = "all"
)

// Key is an ordered, hierarchical cache key:
//
//	[dataProvider, resource, action, id?]
//
// Two keys are equal iff all segments match. A key prefix matches any key
// whose leading segments equal it, which is how invalidation scopes and
// optimistic updates locate affected entries.
type Key struct {
	segs []string
}

// BuildKey constructs a full query key. id may be empty for collection
// shaped actions (list, many, all).
func BuildKey(dataProvider, resource string, action Action, id string) Key {
	segs := make([]string, 0, 4)
	segs = append(segs, dataProvider, resource, string(action))
	if id != "" {
		segs = append(segs, id)
	}
	return Key{segs: segs}
}

// ProviderKey is the prefix covering every entry of one data provider.
func ProviderKey(dataProvider string) Key {
	return Key{segs: []string{dataProvider}}
}

// ResourceKey is the prefix covering every entry of one resource.
func ResourceKey(dataProvider, resource string) Key {
	return Key{segs: []string{dataProvider, resource}}
}

func (k Key) Len() int { return len(k.segs) }

// Segments returns a copy of the key's segments.
func (k Key) Segments() []string {
	out := make([]string, len(k.segs))
	copy(out, k.segs)
	return out
}

// Equal reports segment-wise equality.
func (k Key) Equal(other Key) bool {
	if len(k.segs) != len(other.segs) {
		return false
	}
	for i, s := range k.segs {
		if other.segs[i] != s {
			return false
		}
	}
	return true
}

// HasPrefix reports whether k starts with every segment of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.segs) > len(k.segs) {
		return false
	}
	for i, s := range prefix.segs {
		if k.segs[i] != s {
			return false
		}
	}
	return true
}

// String returns the canonical, collision-free form used as the storage key.
// Segments are escaped so ':' inside a segment cannot alias another key.
func (k Key) String() string {
	return util.JoinSegments(k.segs)
}

// NormalizeID maps an arbitrary record identifier to its canonical string
// form. Identifier comparison across the library is loose: 1 and "1" refer
// to the same record, matching how decoded JSON ids behave.
func NormalizeID(id any) string {
	if id == nil {
		return ""
	}
	switch v := id.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; keep integral ids clean
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
