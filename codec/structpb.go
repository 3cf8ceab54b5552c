package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Structpb serializes payloads as protobuf well-known Struct/ListValue
// messages. The zero value is ready to use.
//
// Useful when the surrounding system already speaks protobuf: payloads stay
// schemaless (records are google.protobuf.Struct) while remaining readable
// by any protobuf consumer. Numeric values round-trip as float64, same as
// JSON.
type Structpb struct{}

var _ Codec = Structpb{}

func (Structpb) EncodeRecord(r Record) ([]byte, error) {
	s, err := structpb.NewStruct(r)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (Structpb) DecodeRecord(b []byte) (Record, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}

func (Structpb) EncodeList(l []Record) ([]byte, error) {
	vals := make([]any, len(l))
	for i, r := range l {
		vals[i] = map[string]any(r)
	}
	lv, err := structpb.NewList(vals)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(lv)
}

func (Structpb) DecodeList(b []byte) ([]Record, error) {
	var lv structpb.ListValue
	if err := proto.Unmarshal(b, &lv); err != nil {
		return nil, err
	}
	raw := lv.AsSlice()
	out := make([]Record, len(raw))
	for i, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("structpb: collection member %d is %T, not a record", i, v)
		}
		out[i] = m
	}
	return out, nil
}
