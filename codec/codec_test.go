package codec

import (
	"reflect"
	"strings"
	"testing"
)

func TestStructpbRoundTrip(t *testing.T) {
	c := Structpb{}
	rec := Record{"id": "1", "title": "hello", "views": float64(42), "draft": true}

	b, err := c.EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	got, err := c.DecodeRecord(b)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("record mismatch: got %v want %v", got, rec)
	}

	list := []Record{{"id": "1"}, {"id": "2", "nested": map[string]any{"a": float64(1)}}}
	b, err = c.EncodeList(list)
	if err != nil {
		t.Fatalf("EncodeList: %v", err)
	}
	gotList, err := c.DecodeList(b)
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	if !reflect.DeepEqual(gotList, list) {
		t.Fatalf("list mismatch: got %v want %v", gotList, list)
	}
}

func TestLimitRejectsOversizedPayloads(t *testing.T) {
	c := Limit{Inner: JSON{}, MaxDecode: 8}

	small := []byte(`{"a":1}`)
	if _, err := c.DecodeRecord(small); err != nil {
		t.Fatalf("small payload rejected: %v", err)
	}

	big := []byte(`{"key":"` + strings.Repeat("x", 64) + `"}`)
	if _, err := c.DecodeRecord(big); err == nil {
		t.Fatalf("oversized record payload accepted")
	}
	if _, err := c.DecodeList(big); err == nil {
		t.Fatalf("oversized list payload accepted")
	}

	// MaxDecode <= 0 disables the check.
	unlimited := Limit{Inner: JSON{}, MaxDecode: 0}
	if _, err := unlimited.DecodeRecord(big); err != nil {
		t.Fatalf("limit disabled but payload rejected: %v", err)
	}
}
