package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	formatVersion byte = 1

	KindRecord     byte = 1
	KindCollection byte = 2
)

var (
	ErrCorrupt = errors.New("optiq: corrupt entry")
	magic4     = [...]byte{'O', 'P', 'T', 'Q'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

func validKind(k byte) bool {
	return k == KindRecord || k == KindCollection
}

// Entry: magic(4) | fmt(1) | kind(1) | entryVersion(u64 be) | vlen(u32 be) | payload(vlen)
func EncodeEntry(kind byte, version uint64, payload []byte) []byte {
	if !validKind(kind) {
		panic("optiq: invalid wire kind")
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(formatVersion)
	buf.WriteByte(kind)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], version)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodeEntry(b []byte) (kind byte, version uint64, payload []byte, err error) {
	const hdr = 4 + 1 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != formatVersion || !validKind(b[5]) {
		return 0, 0, nil, ErrCorrupt
	}

	kind = b[5]
	off := 6

	version = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
		return 0, 0, nil, ErrCorrupt
	}

	return kind, version, b[off : off+vlen], nil
}
