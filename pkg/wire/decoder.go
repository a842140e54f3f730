package wire

import (
	"hash"
	"unicode/utf8"

	"code.armistice.org/golang/internal/utils"
)

// trackedTags is the number of low tags checked for duplicates with a Bitset.
// Higher tags rely on the ascending order check only.
const trackedTags = 64

// Decoder reads the fields of one message from a byte slice.
//
// Fields must appear in ascending tag order, each tag at most once.
// A field is read in two steps: DecodeHeader (or DecodeExpectedHeader) and then
// the Decode method matching the header wire type.
//
// The Decoder hashes the bytes of every critical field it consumes,
// Digest returns the accumulated value.
type Decoder struct {
	data []byte
	pos  int

	pending    bool
	hdr        Header
	fieldStart int

	started bool
	lastTag uint64
	seen    utils.Bitset
	closed  bool

	digest hash.Hash
}

// NewDecoder returns a Decoder reading data.
// Byte strings returned by the Decoder alias data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data, seen: utils.NewBitset(trackedTags)}
}

// Remaining returns the number of bytes not consumed yet.
func (self *Decoder) Remaining() int {
	return len(self.data) - self.pos
}

// Digest returns the hash of the critical fields consumed so far.
func (self *Decoder) Digest() Digest {
	return sumDigest(self.digest)
}

// PeekHeader returns the next field header without consuming it.
// It returns false when no data remains.
func (self *Decoder) PeekHeader() (Header, bool, error) {
	if 0 == self.Remaining() {
		return Header{}, false, nil
	}
	v, _, err := readUvarint(self.data[self.pos:])
	if nil != err {
		return Header{}, false, err
	}
	hdr, err := parseHeader(v)
	if nil != err {
		return Header{}, false, err
	}
	return hdr, true, nil
}

// DecodeHeader consumes the next field header.
func (self *Decoder) DecodeHeader() (Header, error) {
	if self.pending {
		return Header{}, newError(ErrMalformedElement, "field tag %d payload not consumed", self.hdr.Tag)
	}
	if 0 == self.Remaining() {
		return Header{}, newError(ErrMalformedElement, "missing field header")
	}
	v, n, err := readUvarint(self.data[self.pos:])
	if nil != err {
		return Header{}, err
	}
	hdr, err := parseHeader(v)
	if nil != err {
		return Header{}, err
	}
	if self.closed {
		return hdr, headerError(hdr.Tag, hdr.WireType, "field follows message digest")
	}
	if hdr.Tag < trackedTags {
		dup, _ := self.seen.TestAndSet(int(hdr.Tag))
		if dup {
			return hdr, headerError(hdr.Tag, hdr.WireType, "duplicate field tag %d", hdr.Tag)
		}
	}
	if self.started && hdr.Tag <= self.lastTag {
		return hdr, headerError(hdr.Tag, hdr.WireType, "field tag %d follows tag %d", hdr.Tag, self.lastTag)
	}

	self.started = true
	self.lastTag = hdr.Tag
	self.fieldStart = self.pos
	self.pos += n
	self.pending = true
	self.hdr = hdr

	return hdr, nil
}

// DecodeExpectedHeader consumes the next field header and errors with ErrUnexpectedFieldHeader
// if it does not carry tag & wt.
func (self *Decoder) DecodeExpectedHeader(tag uint64, wt WireType) (Header, error) {
	hdr, err := self.DecodeHeader()
	if nil != err {
		return hdr, err
	}
	if tag != hdr.Tag || wt != hdr.WireType {
		return hdr, headerError(hdr.Tag, hdr.WireType, "expected field tag %d wire type %s", tag, wt)
	}
	return hdr, nil
}

// DecodeCriticalHeader is DecodeExpectedHeader for a field that must carry the critical bit.
func (self *Decoder) DecodeCriticalHeader(tag uint64, wt WireType) (Header, error) {
	hdr, err := self.DecodeExpectedHeader(tag, wt)
	if nil != err {
		return hdr, err
	}
	return hdr, CheckCritical(hdr, true)
}

// CheckCritical errors with ErrUnexpectedFieldHeader if the critical bit of hdr is not critical.
// A field is covered by the digest only when its critical bit is set, so message decoders
// accept a single encoding for each field.
func CheckCritical(hdr Header, critical bool) error {
	if critical != hdr.Critical {
		return headerError(hdr.Tag, hdr.WireType, "field tag %d has critical bit %t", hdr.Tag, hdr.Critical)
	}
	return nil
}

// DecodeUInt64 consumes an integer payload.
func (self *Decoder) DecodeUInt64() (uint64, error) {
	err := self.expectPayload(WireTypeUInt64)
	if nil != err {
		return 0, err
	}
	v, n, err := readUvarint(self.data[self.pos:])
	if nil != err {
		return 0, err
	}
	self.pos += n
	self.endField()

	return v, nil
}

// DecodeBytes consumes a byte string payload of at most max bytes.
// The returned slice aliases the Decoder input.
func (self *Decoder) DecodeBytes(max int) ([]byte, error) {
	err := self.expectPayload(WireTypeBytes)
	if nil != err {
		return nil, err
	}
	return self.lengthPrefixed(max)
}

// DecodeFixedBytes consumes a byte string payload of exactly size bytes.
func (self *Decoder) DecodeFixedBytes(size int) ([]byte, error) {
	data, err := self.DecodeBytes(size)
	if nil != err {
		return nil, err
	}
	if len(data) != size {
		return nil, newError(ErrMalformedElement, "field tag %d holds %d bytes, expected %d", self.hdr.Tag, len(data), size)
	}
	return data, nil
}

// DecodeString consumes an UTF-8 string payload of at most max bytes.
func (self *Decoder) DecodeString(max int) (string, error) {
	err := self.expectPayload(WireTypeString)
	if nil != err {
		return "", err
	}
	data, err := self.lengthPrefixed(max)
	if nil != err {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", newError(ErrMalformedElement, "field tag %d is not valid UTF-8", self.hdr.Tag)
	}
	return string(data), nil
}

// DecodeMessage consumes a nested message payload and returns a Decoder for its fields.
func (self *Decoder) DecodeMessage() (*Decoder, error) {
	err := self.expectPayload(WireTypeMessage)
	if nil != err {
		return nil, err
	}
	data, err := self.lengthPrefixed(-1)
	if nil != err {
		return nil, err
	}
	return NewDecoder(data), nil
}

// DecodeSequence consumes a sequence payload whose elements are of wire type elem.
// A sequence declaring any other element type errors with ErrMalformedElement.
func (self *Decoder) DecodeSequence(elem WireType) (*SequenceDecoder, error) {
	err := self.expectPayload(WireTypeSequence)
	if nil != err {
		return nil, err
	}
	et, n, err := readUvarint(self.data[self.pos:])
	if nil != err {
		return nil, err
	}
	if uint64(elem) != et {
		return nil, newError(ErrMalformedElement, "field tag %d is a sequence of %s, expected %s", self.hdr.Tag, WireType(et&wireTypeMask), elem)
	}
	self.pos += n
	data, err := self.lengthPrefixed(-1)
	if nil != err {
		return nil, err
	}
	return &SequenceDecoder{wireType: elem, data: data}, nil
}

// DecodeDigest consumes a 32 bytes payload and compares it with the digest of the critical
// fields consumed so far. It errors with ErrDigestMismatch if they differ.
// No field may follow the digest.
func (self *Decoder) DecodeDigest() (Digest, error) {
	var carried Digest
	computed := self.Digest()
	data, err := self.DecodeFixedBytes(DigestSize)
	if nil != err {
		return carried, err
	}
	copy(carried[:], data)
	self.closed = true
	if !computed.Equal(carried) {
		return carried, newError(ErrDigestMismatch, "carried digest %s, computed %s", carried, computed)
	}
	return carried, nil
}

// Finish errors if the last field payload was not consumed or if bytes remain.
func (self *Decoder) Finish() error {
	if self.pending {
		return newError(ErrMalformedElement, "field tag %d payload not consumed", self.hdr.Tag)
	}
	if self.pos < len(self.data) {
		return newError(ErrTrailingData, "%d bytes remain after message", self.Remaining())
	}
	return nil
}

func (self *Decoder) expectPayload(wt WireType) error {
	if !self.pending {
		return newError(ErrMalformedElement, "no field header decoded")
	}
	if wt != self.hdr.WireType {
		return headerError(self.hdr.Tag, self.hdr.WireType, "field is not a %s", wt)
	}
	return nil
}

func (self *Decoder) lengthPrefixed(max int) ([]byte, error) {
	data, n, err := takeLengthPrefixed(self.data[self.pos:], max)
	if nil != err {
		return nil, err
	}
	self.pos += n
	self.endField()
	return data, nil
}

func (self *Decoder) endField() {
	self.pending = false
	if !self.hdr.Critical {
		return
	}
	if nil == self.digest {
		self.digest = newDigestHash()
	}
	self.digest.Write(self.data[self.fieldStart:self.pos])
}

// takeLengthPrefixed reads a varint length followed by that many bytes.
// max < 0 disables the length bound.
func takeLengthPrefixed(data []byte, max int) ([]byte, int, error) {
	size, n, err := readUvarint(data)
	if nil != err {
		return nil, 0, err
	}
	if max >= 0 && size > uint64(max) {
		return nil, 0, newError(ErrLengthExceeded, "length %d exceeds %d", size, max)
	}
	if size > uint64(len(data)-n) {
		return nil, 0, newError(ErrMalformedElement, "truncated, length %d but %d bytes remain", size, len(data)-n)
	}
	end := n + int(size)
	return data[n:end], end, nil
}
