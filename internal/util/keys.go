package util

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

const maxSegment = 64

var segEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// EncodeSegment makes a key segment safe to join with ':'. Oversized
// segments are replaced by a short hash so storage keys stay bounded.
func EncodeSegment(s string) string {
	s = segEscaper.Replace(s)
	if len(s) <= maxSegment {
		return s
	}
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)[:16]
}

// JoinSegments builds the canonical ':'-joined form of a key.
func JoinSegments(segs []string) string {
	enc := make([]string, len(segs))
	for i, s := range segs {
		enc[i] = EncodeSegment(s)
	}
	return strings.Join(enc, ":")
}
