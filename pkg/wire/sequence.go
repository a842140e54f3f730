package wire

// SequenceDecoder walks the elements of a sequence field.
type SequenceDecoder struct {
	wireType WireType
	data     []byte
	pos      int
	count    int
}

// WireType returns the declared element wire type.
func (self *SequenceDecoder) WireType() WireType {
	return self.wireType
}

// More returns true while elements remain.
func (self *SequenceDecoder) More() bool {
	return self.pos < len(self.data)
}

// Count returns the number of elements decoded so far.
func (self *SequenceDecoder) Count() int {
	return self.count
}

// DecodeUInt64 consumes the next integer element.
func (self *SequenceDecoder) DecodeUInt64() (uint64, error) {
	err := self.expect(WireTypeUInt64)
	if nil != err {
		return 0, err
	}
	v, n, err := readUvarint(self.data[self.pos:])
	if nil != err {
		return 0, err
	}
	self.pos += n
	self.count += 1
	return v, nil
}

// DecodeBytes consumes the next byte string element, at most max bytes long.
func (self *SequenceDecoder) DecodeBytes(max int) ([]byte, error) {
	err := self.expect(WireTypeBytes)
	if nil != err {
		return nil, err
	}
	return self.lengthPrefixed(max)
}

// DecodeMessage consumes the next message element and returns a Decoder for its fields.
func (self *SequenceDecoder) DecodeMessage() (*Decoder, error) {
	err := self.expect(WireTypeMessage)
	if nil != err {
		return nil, err
	}
	data, err := self.lengthPrefixed(-1)
	if nil != err {
		return nil, err
	}
	return NewDecoder(data), nil
}

// Finish errors with ErrTrailingData if elements remain.
func (self *SequenceDecoder) Finish() error {
	if self.More() {
		return newError(ErrTrailingData, "%d bytes remain after element #%d", len(self.data)-self.pos, self.count)
	}
	return nil
}

func (self *SequenceDecoder) expect(wt WireType) error {
	if wt != self.wireType {
		return newError(ErrMalformedElement, "sequence holds %s elements, not %s", self.wireType, wt)
	}
	if !self.More() {
		return newError(ErrMalformedElement, "sequence holds %d elements", self.count)
	}
	return nil
}

func (self *SequenceDecoder) lengthPrefixed(max int) ([]byte, error) {
	data, n, err := takeLengthPrefixed(self.data[self.pos:], max)
	if nil != err {
		return nil, err
	}
	self.pos += n
	self.count += 1
	return data, nil
}
