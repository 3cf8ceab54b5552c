package codec

import "fmt"

// Limit wraps another codec to enforce a maximum allowed payload size at
// decode time. Encoding is forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: protect against oversized/foreign entries coming from a
// shared cache backend.
type Limit struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec
	// MaxDecode is the maximum permitted length (in bytes) of an incoming
	// payload. Longer payloads fail without invoking Inner.
	MaxDecode int
}

var _ Codec = Limit{}

func (c Limit) check(b []byte) error {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		return fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return nil
}

func (c Limit) EncodeRecord(r Record) ([]byte, error) { return c.Inner.EncodeRecord(r) }

func (c Limit) DecodeRecord(b []byte) (Record, error) {
	if err := c.check(b); err != nil {
		return nil, err
	}
	return c.Inner.DecodeRecord(b)
}

func (c Limit) EncodeList(l []Record) ([]byte, error) { return c.Inner.EncodeList(l) }

func (c Limit) DecodeList(b []byte) ([]Record, error) {
	if err := c.check(b); err != nil {
		return nil, err
	}
	return c.Inner.DecodeList(b)
}
