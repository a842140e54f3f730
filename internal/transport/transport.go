package transport

import (
	"encoding/binary"
	"io"
)

// Transport moves whole packets between a host and a token.
// One WriteBytes carries one request or one reply.
type Transport interface {
	ReadBytes() ([]byte, error)
	WriteBytes(data []byte) error
}

// T aliases Transport
type T = Transport

// MaxFrameSize is the largest payload a RWTransport frame can carry.
const MaxFrameSize = 0xFFFF

// RWTransport frames packets over a byte stream (TCP connection, pipe...).
// Each packet is prefixed with its uint16 big endian length.
type RWTransport struct {
	R io.Reader // source from which packets are read.
	W io.Writer // destination to which packets are written.
}

func (self RWTransport) ReadBytes() ([]byte, error) {
	psb := make([]byte, 2)
	_, err := io.ReadFull(self.R, psb)
	if nil != err {
		return nil, wrapError(err, "failed reading data size")
	}
	psz := binary.BigEndian.Uint16(psb)

	data := make([]byte, int(psz))
	_, err = io.ReadFull(self.R, data)
	if nil != err {
		return nil, wrapError(err, "failed reading data")
	}

	return data, nil
}

func (self RWTransport) WriteBytes(data []byte) error {
	if len(data) > MaxFrameSize {
		return newError(ErrPacketSize, "data larger than %d", MaxFrameSize)
	}

	pdata := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(pdata, uint16(len(data)))
	copy(pdata[2:], data)

	_, err := self.W.Write(pdata)

	return wrapError(err, "failed writing data") // nil if err is nil ...
}

var _ Transport = RWTransport{}

// PacketTransport bounds the size of the packets exchanged over an inner Transport.
// It models a bulk endpoint with a fixed maximum packet size.
type PacketTransport struct {
	Transport
	MaxSize int
}

// ReadBytes errors with ErrPacketSize if the received packet exceeds MaxSize.
func (self PacketTransport) ReadBytes() ([]byte, error) {
	data, err := self.Transport.ReadBytes()
	if nil != err {
		return nil, err
	}
	if self.MaxSize > 0 && len(data) > self.MaxSize {
		return nil, newError(ErrPacketSize, "received %d bytes, max packet size is %d", len(data), self.MaxSize)
	}
	return data, nil
}

// WriteBytes errors with ErrPacketSize if data exceeds MaxSize.
func (self PacketTransport) WriteBytes(data []byte) error {
	if self.MaxSize > 0 && len(data) > self.MaxSize {
		return newError(ErrPacketSize, "sending %d bytes, max packet size is %d", len(data), self.MaxSize)
	}
	return self.Transport.WriteBytes(data)
}

var _ Transport = PacketTransport{}
