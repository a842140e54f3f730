package wire

import (
	"errors"

	"github.com/multiformats/go-varint"
)

// MaxUInt64 is the largest integer the codec carries. Larger values do not fit the 63 bit varint range.
const MaxUInt64 = uint64(varint.MaxValueUvarint63)

// uvarintLen returns the size of the minimal varint encoding of v.
func uvarintLen(v uint64) int {
	return varint.UvarintSize(v)
}

// readUvarint decodes the minimal varint found at the start of data.
// It returns the value and the number of bytes consumed.
func readUvarint(data []byte) (uint64, int, error) {
	v, n, err := varint.FromUvarint(data)
	switch {
	case nil == err:
		return v, n, nil
	case errors.Is(err, varint.ErrNotMinimal):
		return 0, 0, wrapError(ErrMalformedElement, err, "non canonical varint")
	case errors.Is(err, varint.ErrOverflow):
		return 0, 0, wrapError(ErrLengthExceeded, err, "varint larger than 63 bits")
	default:
		return 0, 0, wrapError(ErrMalformedElement, err, "truncated varint")
	}
}
