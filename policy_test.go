package optiq

import (
	"reflect"
	"testing"
)

func TestDefaultDetailMerge(t *testing.T) {
	var p DetailPolicy // zero value = default merge
	prev := Record{"id": "1", "title": "A", "views": 7}

	next, changed := p.apply(prev, Record{"title": "B"}, "1")
	if !changed {
		t.Fatalf("default merge must report a change")
	}
	if next["title"] != "B" || next["views"] != 7 {
		t.Fatalf("merge result: %v", next)
	}
	if prev["title"] != "A" {
		t.Fatalf("previous value mutated: %v", prev)
	}
}

func TestDefaultListMergeOnlyMatchingID(t *testing.T) {
	var p ListPolicy
	prev := []Record{
		{"id": "1", "title": "A"},
		{"id": "2", "title": "other"},
		{"id": 1, "title": "numeric"}, // loose id equality
	}

	next, changed := p.apply(prev, Record{"title": "B"}, "1")
	if !changed {
		t.Fatalf("default merge must report a change")
	}
	if next[0]["title"] != "B" || next[2]["title"] != "B" {
		t.Fatalf("matching records not patched: %v", next)
	}
	if next[1]["title"] != "other" {
		t.Fatalf("non-matching record touched: %v", next[1])
	}
	if prev[0]["title"] != "A" {
		t.Fatalf("previous collection mutated: %v", prev)
	}
}

func TestCustomPoliciesAndNilResult(t *testing.T) {
	detail := CustomDetail(func(prev, values Record, id string) Record {
		return Record{"id": id, "replaced": true}
	})
	next, changed := detail.apply(Record{"id": "1"}, Record{"x": 1}, "1")
	if !changed || !reflect.DeepEqual(next, Record{"id": "1", "replaced": true}) {
		t.Fatalf("custom detail: changed=%v next=%v", changed, next)
	}

	noop := CustomDetail(func(Record, Record, string) Record { return nil })
	if _, changed := noop.apply(Record{"id": "1"}, nil, "1"); changed {
		t.Fatalf("nil result must leave the entry unmutated")
	}

	list := CustomList(func(prev []Record, values Record, id string) []Record {
		return prev[:1]
	})
	got, changed := list.apply([]Record{{"id": "1"}, {"id": "2"}}, nil, "1")
	if !changed || len(got) != 1 {
		t.Fatalf("custom list: changed=%v got=%v", changed, got)
	}
}

func TestSkipPolicies(t *testing.T) {
	m := UpdateMap{Detail: SkipDetail(), List: SkipList()}
	if !m.Detail.skip || !m.List.skip || m.Many.skip {
		t.Fatalf("skip flags: %+v", m)
	}
}
