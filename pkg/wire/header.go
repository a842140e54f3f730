package wire

import (
	"fmt"

	"github.com/multiformats/go-varint"
)

// WireType is the 3 bit encoding class of a field.
type WireType uint8

const (
	WireTypeUInt64   = WireType(2)
	WireTypeBytes    = WireType(4)
	WireTypeString   = WireType(5)
	WireTypeMessage  = WireType(6)
	WireTypeSequence = WireType(7)
)

func (self WireType) String() string {
	switch self {
	case WireTypeUInt64:
		return "uint64"
	case WireTypeBytes:
		return "bytes"
	case WireTypeString:
		return "string"
	case WireTypeMessage:
		return "message"
	case WireTypeSequence:
		return "sequence"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(self))
	}
}

// Valid returns true if self is not a reserved wire type.
func (self WireType) Valid() bool {
	switch self {
	case WireTypeUInt64, WireTypeBytes, WireTypeString, WireTypeMessage, WireTypeSequence:
		return true
	default:
		return false
	}
}

const (
	wireTypeMask = 0x7
	criticalBit  = 0x8
	tagShift     = 4
)

// MaxTag is the largest tag whose header fits the 63 bit varint range.
const MaxTag = uint64(varint.MaxValueUvarint63) >> tagShift

// Header prefixes every field. It is encoded as one varint: tag<<4 | critical<<3 | wire type.
type Header struct {
	Tag      uint64
	WireType WireType
	Critical bool
}

func (self Header) value() uint64 {
	v := self.Tag<<tagShift | uint64(self.WireType)
	if self.Critical {
		v |= criticalBit
	}
	return v
}

// EncodedLen returns the size of the encoded Header.
func (self Header) EncodedLen() int {
	return varint.UvarintSize(self.value())
}

// Check errors if self can not be encoded.
func (self Header) Check() error {
	if self.Tag > MaxTag {
		return newError(ErrLengthExceeded, "tag %d larger than %d", self.Tag, MaxTag)
	}
	if !self.WireType.Valid() {
		return newError(ErrMalformedElement, "invalid wire type %s", self.WireType)
	}
	return nil
}

func parseHeader(v uint64) (Header, error) {
	hdr := Header{
		Tag:      v >> tagShift,
		WireType: WireType(v & wireTypeMask),
		Critical: 0 != v&criticalBit,
	}
	if !hdr.WireType.Valid() {
		return hdr, newError(ErrMalformedElement, "field tag %d uses %s wire type", hdr.Tag, hdr.WireType)
	}
	return hdr, nil
}
