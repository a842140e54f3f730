package utils

// Bitset is a fixed size bit array packed in a byte slice, most significant bit first.
type Bitset []byte

// NewBitset returns a zeroed Bitset able to hold size bits.
func NewBitset(size int) Bitset {
	if size < 0 {
		size = 0
	}
	return make(Bitset, (size+7)/8)
}

// Size returns the number of addressable bits.
func (self Bitset) Size() int {
	return 8 * len(self)
}

// SetBit sets the bit at pos to 1.
func (self Bitset) SetBit(pos int) error {
	idx, mask, err := self.locate(pos)
	if nil != err {
		return err
	}
	self[idx] |= mask
	return nil
}

// GetBit returns the bit at pos.
func (self Bitset) GetBit(pos int) (bool, error) {
	idx, mask, err := self.locate(pos)
	if nil != err {
		return false, err
	}
	return 0 != self[idx]&mask, nil
}

// TestAndSet sets the bit at pos and reports whether it was already set.
func (self Bitset) TestAndSet(pos int) (bool, error) {
	idx, mask, err := self.locate(pos)
	if nil != err {
		return false, err
	}
	wasSet := 0 != self[idx]&mask
	self[idx] |= mask
	return wasSet, nil
}

func (self Bitset) locate(pos int) (int, byte, error) {
	if pos < 0 || pos >= self.Size() {
		return 0, 0, newError(ErrRange, "bit %d outside of [0, %d)", pos, self.Size())
	}
	return pos / 8, byte(1) << (7 - pos%8), nil
}
