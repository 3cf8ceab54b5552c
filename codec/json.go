package codec

import "encoding/json"

// JSON serializes payloads with encoding/json. The zero value is ready to
// use and is the store's default codec.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) EncodeRecord(r Record) ([]byte, error) { return json.Marshal(r) }

func (JSON) DecodeRecord(b []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(b, &r)
	return r, err
}

func (JSON) EncodeList(l []Record) ([]byte, error) { return json.Marshal(l) }

func (JSON) DecodeList(b []byte) ([]Record, error) {
	var l []Record
	err := json.Unmarshal(b, &l)
	return l, err
}
