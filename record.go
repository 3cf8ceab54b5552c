package optiq

// Record is a schemaless data record as produced by data providers and
// stored in the cache. It is an alias so codec implementations can work on
// plain maps without importing this package.
type Record = map[string]any

// Meta carries resource- and call-scoped metadata forwarded to data
// providers and side-effect dispatchers.
type Meta map[string]any

// mergeRecord overlays patch onto prev without mutating either
// (shallow merge; nested values are shared, not copied).
func mergeRecord(prev, patch Record) Record {
	out := make(Record, len(prev)+len(patch))
	for k, v := range prev {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// recordHasID reports whether rec's identifier equals id under loose
// (string-normalized) comparison.
func recordHasID(rec Record, id string) bool {
	v, ok := rec["id"]
	if !ok {
		return false
	}
	return NormalizeID(v) == id
}

// mergeMeta overlays the given layers left to right; later layers win.
// Nil layers are skipped.
func mergeMeta(layers ...Meta) Meta {
	out := Meta{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// stripMetaKeys returns m without the named keys. Used to keep transport
// payload fields (query/mutation bodies) out of the meta handed to
// invalidation and side-effect dispatchers, while the full meta still goes
// to the data-provider call.
func stripMetaKeys(m Meta, keys []string) Meta {
	if len(keys) == 0 {
		return m
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
