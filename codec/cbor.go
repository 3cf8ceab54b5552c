package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR maps decode as map[interface{}]interface{} by default; force
// string-keyed maps so records round-trip like the other codecs.
var reflectStringMap = reflect.TypeOf(map[string]any(nil))

// CBOR serializes payloads using fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// Use deterministic=true for canonical encoding (RFC 8949 Core Deterministic)
// when you need byte-for-byte stable outputs. Otherwise
// PreferredUnsortedEncOptions are used (sensible defaults). Time values are
// encoded as RFC3339Nano for stable, human-readable timestamps.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec = CBOR{}

// NewCBOR constructs a CBOR codec.
//   - Deterministic is true, uses CoreDetEncOptions (RFC 8949).
//   - Otherwise uses PreferredUnsortedEncOptions (smaller/faster defaults).
func NewCBOR(deterministic bool) (CBOR, error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR{}, err
	}
	do := cbor.DecOptions{DefaultMapType: reflectStringMap}
	dm, err := do.DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error.
// Handy for package-level variables in tests/examples; avoid in prod paths.
func MustCBOR(deterministic bool) CBOR {
	c, err := NewCBOR(deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR) EncodeRecord(r Record) ([]byte, error) { return c.enc.Marshal(r) }

func (c CBOR) DecodeRecord(b []byte) (Record, error) {
	var r Record
	err := c.dec.Unmarshal(b, &r)
	return r, err
}

func (c CBOR) EncodeList(l []Record) ([]byte, error) { return c.enc.Marshal(l) }

func (c CBOR) DecodeList(b []byte) ([]Record, error) {
	var l []Record
	err := c.dec.Unmarshal(b, &l)
	return l, err
}
