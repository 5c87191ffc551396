package msg

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

func errBadLength(n int) error {
	return xerrors.Errorf("msg: payload length %d: %w", n, ErrMalformed)
}

// U32x10 is the wire layout of a full command payload: ten little-endian
// 32-bit words. Commands that need fewer words leave the rest zero.
type U32x10 [10]uint32

// DecodeU32x10 unpacks a payload into words. Short payloads decode into
// the leading words with the rest zero, matching a zero-padded wire
// buffer. Lengths that are not 4-byte aligned or exceed MaxLen are
// malformed.
func DecodeU32x10(p []byte) (U32x10, error) {
	var v U32x10
	if len(p) > MaxLen || len(p)%4 != 0 {
		return v, errBadLength(len(p))
	}
	for i := 0; i+4 <= len(p); i += 4 {
		v[i/4] = binary.LittleEndian.Uint32(p[i:])
	}
	return v, nil
}

// Encode packs the words back into wire format.
func (v U32x10) Encode() []byte {
	p := make([]byte, MaxLen)
	for i, w := range v {
		binary.LittleEndian.PutUint32(p[i*4:], w)
	}
	return p
}

// EncodeU32 packs a single word, the payload shape of every getter reply.
func EncodeU32(w uint32) []byte {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, w)
	return p
}
