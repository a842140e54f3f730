package wire

import (
	"hash"
	"unicode/utf8"

	"github.com/multiformats/go-varint"
)

// Encoder writes fields into a caller supplied buffer. It never grows the buffer,
// running out of space errors with ErrBufferTooSmall.
//
// The Encoder hashes the bytes of every critical field it writes,
// Digest returns the accumulated value.
type Encoder struct {
	buf    []byte
	pos    int
	digest hash.Hash
}

// NewEncoder returns an Encoder that writes into buf[:len(buf)].
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Len returns the number of bytes written so far.
func (self *Encoder) Len() int {
	return self.pos
}

// Available returns the number of bytes that can still be written.
func (self *Encoder) Available() int {
	return len(self.buf) - self.pos
}

// Finish returns the encoded bytes.
func (self *Encoder) Finish() []byte {
	return self.buf[:self.pos]
}

// Digest returns the hash of the critical fields written so far.
func (self *Encoder) Digest() Digest {
	return sumDigest(self.digest)
}

// UInt64 writes an integer field.
func (self *Encoder) UInt64(tag uint64, critical bool, v uint64) error {
	if v > MaxUInt64 {
		return newError(ErrLengthExceeded, "field tag %d value %d larger than %d", tag, v, MaxUInt64)
	}
	hdr := Header{Tag: tag, WireType: WireTypeUInt64, Critical: critical}
	start, err := self.beginField(hdr)
	if nil != err {
		return err
	}
	err = self.putUvarint(v)
	if nil != err {
		return err
	}
	self.endField(hdr, start)

	return nil
}

// Bytes writes a length prefixed byte string field.
func (self *Encoder) Bytes(tag uint64, critical bool, data []byte) error {
	return self.lengthPrefixed(Header{Tag: tag, WireType: WireTypeBytes, Critical: critical}, data)
}

// String writes an UTF-8 string field.
func (self *Encoder) String(tag uint64, critical bool, s string) error {
	if !utf8.ValidString(s) {
		return newError(ErrMalformedElement, "field tag %d is not valid UTF-8", tag)
	}
	return self.lengthPrefixed(Header{Tag: tag, WireType: WireTypeString, Critical: critical}, []byte(s))
}

// Message writes a nested message field.
func (self *Encoder) Message(tag uint64, critical bool, msg Message) error {
	hdr := Header{Tag: tag, WireType: WireTypeMessage, Critical: critical}
	start, err := self.beginField(hdr)
	if nil != err {
		return err
	}
	size := msg.EncodedLen()
	err = self.putUvarint(uint64(size))
	if nil != err {
		return err
	}
	err = self.nested(msg, size)
	if nil != err {
		return wrapError(ErrMalformedElement, err, "failed encoding field tag %d", tag)
	}
	self.endField(hdr, start)

	return nil
}

// MessageSeq writes a sequence field whose elements are messages.
func (self *Encoder) MessageSeq(tag uint64, critical bool, msgs ...Message) error {
	hdr := Header{Tag: tag, WireType: WireTypeSequence, Critical: critical}
	start, err := self.beginField(hdr)
	if nil != err {
		return err
	}
	sizes := make([]int, len(msgs))
	var body int
	for pos, msg := range msgs {
		sizes[pos] = msg.EncodedLen()
		body += uvarintLen(uint64(sizes[pos])) + sizes[pos]
	}
	err = self.sequencePrefix(WireTypeMessage, body)
	if nil != err {
		return err
	}
	for pos, msg := range msgs {
		err = self.putUvarint(uint64(sizes[pos]))
		if nil != err {
			return err
		}
		err = self.nested(msg, sizes[pos])
		if nil != err {
			return wrapError(ErrMalformedElement, err, "failed encoding field tag %d element #%d", tag, pos)
		}
	}
	self.endField(hdr, start)

	return nil
}

// UInt64Seq writes a sequence field whose elements are integers.
func (self *Encoder) UInt64Seq(tag uint64, critical bool, values ...uint64) error {
	hdr := Header{Tag: tag, WireType: WireTypeSequence, Critical: critical}
	var body int
	for _, v := range values {
		if v > MaxUInt64 {
			return newError(ErrLengthExceeded, "field tag %d value %d larger than %d", tag, v, MaxUInt64)
		}
		body += uvarintLen(v)
	}
	start, err := self.beginField(hdr)
	if nil != err {
		return err
	}
	err = self.sequencePrefix(WireTypeUInt64, body)
	if nil != err {
		return err
	}
	for _, v := range values {
		err = self.putUvarint(v)
		if nil != err {
			return err
		}
	}
	self.endField(hdr, start)

	return nil
}

func (self *Encoder) lengthPrefixed(hdr Header, data []byte) error {
	start, err := self.beginField(hdr)
	if nil != err {
		return err
	}
	err = self.putUvarint(uint64(len(data)))
	if nil != err {
		return err
	}
	dst, err := self.reserve(len(data))
	if nil != err {
		return err
	}
	copy(dst, data)
	self.endField(hdr, start)

	return nil
}

func (self *Encoder) sequencePrefix(elem WireType, body int) error {
	err := self.putUvarint(uint64(elem))
	if nil != err {
		return err
	}
	return self.putUvarint(uint64(body))
}

// nested encodes msg into the next size bytes of the buffer.
func (self *Encoder) nested(msg Message, size int) error {
	dst, err := self.reserve(size)
	if nil != err {
		return err
	}
	child := NewEncoder(dst)
	err = msg.Encode(child)
	if nil != err {
		return err
	}
	if child.pos != size {
		return newError(ErrMalformedElement, "message wrote %d bytes, EncodedLen announced %d", child.pos, size)
	}
	return nil
}

func (self *Encoder) beginField(hdr Header) (int, error) {
	err := hdr.Check()
	if nil != err {
		return 0, err
	}
	start := self.pos
	return start, self.putUvarint(hdr.value())
}

func (self *Encoder) endField(hdr Header, start int) {
	if !hdr.Critical {
		return
	}
	if nil == self.digest {
		self.digest = newDigestHash()
	}
	self.digest.Write(self.buf[start:self.pos])
}

func (self *Encoder) putUvarint(v uint64) error {
	dst, err := self.reserve(uvarintLen(v))
	if nil != err {
		return err
	}
	copy(dst, varint.ToUvarint(v))
	return nil
}

func (self *Encoder) reserve(n int) ([]byte, error) {
	if n > self.Available() {
		return nil, newError(ErrBufferTooSmall, "need %d bytes, %d available", n, self.Available())
	}
	dst := self.buf[self.pos : self.pos+n]
	self.pos += n
	return dst, nil
}

func fieldHeaderLen(tag uint64) int {
	return Header{Tag: tag, WireType: WireTypeSequence, Critical: true}.EncodedLen()
}

// UInt64Len returns the encoded size of an integer field.
func UInt64Len(tag uint64, v uint64) int {
	return fieldHeaderLen(tag) + uvarintLen(v)
}

// BytesLen returns the encoded size of a byte string field carrying size bytes.
func BytesLen(tag uint64, size int) int {
	return fieldHeaderLen(tag) + uvarintLen(uint64(size)) + size
}

// StringLen returns the encoded size of a string field.
func StringLen(tag uint64, s string) int {
	return BytesLen(tag, len(s))
}

// MessageLen returns the encoded size of a nested message field.
func MessageLen(tag uint64, msg Message) int {
	return BytesLen(tag, msg.EncodedLen())
}

// MessageSeqLen returns the encoded size of a message sequence field.
func MessageSeqLen(tag uint64, msgs ...Message) int {
	var body int
	for _, msg := range msgs {
		size := msg.EncodedLen()
		body += uvarintLen(uint64(size)) + size
	}
	return fieldHeaderLen(tag) + uvarintLen(uint64(WireTypeMessage)) + uvarintLen(uint64(body)) + body
}

// UInt64SeqLen returns the encoded size of an integer sequence field.
func UInt64SeqLen(tag uint64, values ...uint64) int {
	var body int
	for _, v := range values {
		body += uvarintLen(v)
	}
	return fieldHeaderLen(tag) + uvarintLen(uint64(WireTypeUInt64)) + uvarintLen(uint64(body)) + body
}
