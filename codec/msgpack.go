package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes payloads using vmihailenco/msgpack/v5. The zero value
// is ready to use.
//
// Msgpack is compact and fast; decoded map keys come back as strings, so
// records round-trip the same way they do with JSON.
type Msgpack struct{}

var _ Codec = Msgpack{}

func (Msgpack) EncodeRecord(r Record) ([]byte, error) { return msgpack.Marshal(r) }

func (Msgpack) DecodeRecord(b []byte) (Record, error) {
	var r Record
	err := msgpack.Unmarshal(b, &r)
	return r, err
}

func (Msgpack) EncodeList(l []Record) ([]byte, error) { return msgpack.Marshal(l) }

func (Msgpack) DecodeList(b []byte) ([]Record, error) {
	var l []Record
	err := msgpack.Unmarshal(b, &l)
	return l, err
}
