package mcping

import (
	"errors"
	"fmt"
	"io"
)

const (
	segmentBits = 0x7F
	continueBit = 0x80

	// maxVarIntBytes is the longest legal VarInt encoding; five 7-bit
	// groups cover all 32 bits.
	maxVarIntBytes = 5
)

// ErrVarIntTooLong is returned when a VarInt does not terminate within the
// five bytes the protocol allows.
var ErrVarIntTooLong = errors.New("mcping: varint exceeds 5 bytes")

// appendVarInt appends the protocol encoding of v to buf and returns the
// extended slice. Negative values always occupy the full five bytes.
func appendVarInt(buf []byte, v int32) []byte {
	u := uint32(v)
	for {
		if u&^uint32(segmentBits) == 0 {
			return append(buf, byte(u))
		}
		buf = append(buf, byte(u&segmentBits|continueBit))
		u >>= 7
	}
}

// readVarInt decodes a VarInt from r one byte at a time.
func readVarInt(r io.Reader) (int32, error) {
	var v uint32
	var b [1]byte
	for i := 0; i < maxVarIntBytes; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("failed to read varint byte: %w", err)
		}
		v |= uint32(b[0]&segmentBits) << (7 * i)
		if b[0]&continueBit == 0 {
			return int32(v), nil
		}
	}
	return 0, ErrVarIntTooLong
}
