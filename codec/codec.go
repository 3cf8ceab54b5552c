// Package codec defines serialization for cache payloads.
//
// Cache entries hold either a single record (detail queries) or a
// collection of records (list/many queries); a Codec must round-trip both
// shapes. Implementations must be deterministic enough that encoding the
// decoded form of a payload yields an equivalent value - rollback however
// never re-encodes: the store restores the original payload bytes verbatim.
package codec

// Record matches optiq.Record (a plain map) without importing the root
// package.
type Record = map[string]any

// Codec encodes/decodes cache payloads to []byte for storage.
type Codec interface {
	EncodeRecord(Record) ([]byte, error)
	DecodeRecord([]byte) (Record, error)
	EncodeList([]Record) ([]byte, error)
	DecodeList([]byte) ([]Record, error)
}
