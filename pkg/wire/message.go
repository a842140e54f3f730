package wire

// Message is implemented by every type carried on the wire.
type Message interface {
	// Encode writes the message fields to enc.
	Encode(enc *Encoder) error

	// EncodedLen returns the exact number of bytes Encode writes.
	EncodedLen() int
}

// DecodeFunc reads a message of type T from a Decoder.
type DecodeFunc[T any] func(dec *Decoder) (T, error)

// Marshal encodes msg into a buffer of its exact size.
func Marshal(msg Message) ([]byte, error) {
	return MarshalTo(msg, make([]byte, msg.EncodedLen()))
}

// MarshalTo encodes msg into buf. It errors with ErrBufferTooSmall if msg does not fit.
func MarshalTo(msg Message, buf []byte) ([]byte, error) {
	enc := NewEncoder(buf)
	err := msg.Encode(enc)
	if nil != err {
		return nil, err
	}
	return enc.Finish(), nil
}

// Unmarshal decodes data using decode. It errors with ErrTrailingData if data holds
// more than one message.
func Unmarshal[T any](data []byte, decode DecodeFunc[T]) (T, error) {
	dec := NewDecoder(data)
	msg, err := decode(dec)
	if nil != err {
		return msg, err
	}
	err = dec.Finish()
	if nil != err {
		var zero T
		return zero, err
	}
	return msg, nil
}
