package wire

import (
	"bytes"
	"math"
	"testing"
)

func mustDecode(t *testing.T, b []byte) (byte, uint64, []byte) {
	t.Helper()
	kind, ver, p, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry error: %v", err)
	}
	return kind, ver, p
}

func TestEntryRoundTrip(t *testing.T) {
	cases := []struct {
		kind    byte
		version uint64
		payload []byte
	}{
		{KindRecord, 0, nil},
		{KindRecord, 42, []byte(`{"id":"1"}`)},
		{KindCollection, math.MaxUint64, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := EncodeEntry(tc.kind, tc.version, tc.payload)
		kind, ver, p := mustDecode(t, enc)
		if kind != tc.kind {
			t.Fatalf("kind mismatch: got %d want %d", kind, tc.kind)
		}
		if ver != tc.version {
			t.Fatalf("version mismatch: got %d want %d", ver, tc.version)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestEntryCorruptInputs(t *testing.T) {
	good := EncodeEntry(KindRecord, 7, []byte("abc"))

	cases := map[string][]byte{
		"empty":       nil,
		"short":       good[:5],
		"bad magic":   append([]byte("XXXX"), good[4:]...),
		"bad format":  func() []byte { b := bytes.Clone(good); b[4] = 99; return b }(),
		"bad kind":    func() []byte { b := bytes.Clone(good); b[5] = 9; return b }(),
		"length lies": func() []byte { b := bytes.Clone(good); b[17] = 0xFF; return b }(),
		"truncated":   good[:len(good)-1],
	}
	for name, b := range cases {
		if _, _, _, err := DecodeEntry(b); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestEncodeEntryRejectsUnknownKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown kind")
		}
	}()
	EncodeEntry(0, 1, nil)
}
