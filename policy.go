package optiq

// DetailFunc computes the new detail payload from the previous one.
// Returning nil leaves the cache entry unmutated.
type DetailFunc func(prev Record, values Record, id string) Record

// ListFunc computes the new collection payload from the previous one.
// Returning nil leaves the cache entry unmutated.
type ListFunc func(prev []Record, values Record, id string) []Record

// DetailPolicy decides how the detail scope is patched during the
// optimistic phase. The zero value applies the default shallow merge.
type DetailPolicy struct {
	skip bool
	fn   DetailFunc
}

// SkipDetail leaves the detail scope untouched for the whole mutation.
func SkipDetail() DetailPolicy { return DetailPolicy{skip: true} }

// CustomDetail patches the detail scope with fn instead of the default merge.
func CustomDetail(fn DetailFunc) DetailPolicy { return DetailPolicy{fn: fn} }

func (p DetailPolicy) apply(prev, values Record, id string) (Record, bool) {
	if p.fn != nil {
		next := p.fn(prev, values, id)
		if next == nil {
			return nil, false
		}
		return next, true
	}
	return mergeRecord(prev, values), true
}

// ListPolicy decides how a collection scope (list or many) is patched.
// The zero value merges values onto every member whose id matches the
// mutation's id and leaves the rest untouched.
type ListPolicy struct {
	skip bool
	fn   ListFunc
}

// SkipList leaves the scope untouched for the whole mutation.
func SkipList() ListPolicy { return ListPolicy{skip: true} }

// CustomList patches the scope with fn instead of the default merge.
func CustomList(fn ListFunc) ListPolicy { return ListPolicy{fn: fn} }

func (p ListPolicy) apply(prev []Record, values Record, id string) ([]Record, bool) {
	if p.fn != nil {
		next := p.fn(prev, values, id)
		if next == nil {
			return nil, false
		}
		return next, true
	}
	out := make([]Record, len(prev))
	for i, rec := range prev {
		if recordHasID(rec, id) {
			out[i] = mergeRecord(rec, values)
		} else {
			out[i] = rec
		}
	}
	return out, true
}

// UpdateMap selects, per cache scope, how the optimistic phase patches
// matching entries. The zero value applies the default merge everywhere.
type UpdateMap struct {
	Detail DetailPolicy
	List   ListPolicy
	Many   ListPolicy
}
