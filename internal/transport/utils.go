package transport

import (
	"sync"
)

// LimitTransport is a Transport that fails after a certain number of packets have been processed.
//
// LimitTransport is provided to simplify session testing.
type LimitTransport struct {
	Transport
	mut   sync.Mutex
	rsema int
	wsema int
}

// NewLimitTransport returns a new LimitTransport that wraps t.
func NewLimitTransport(t Transport) *LimitTransport {
	return &LimitTransport{Transport: t}
}

// SetReadLimit set the maximum number of packets that can be read from the LimitTransport.
func (self *LimitTransport) SetReadLimit(limit int) {
	self.mut.Lock()
	defer self.mut.Unlock()

	self.rsema = -limit
}

// SetWriteLimit set the maximum number of packets that can be written to the LimitTransport.
func (self *LimitTransport) SetWriteLimit(limit int) {
	self.mut.Lock()
	defer self.mut.Unlock()

	self.wsema = -limit
}

// ReadBytes errors if SetReadLimit has been exceeded.
// Otherwise data is read from the underlaying Transport.
func (self *LimitTransport) ReadBytes() ([]byte, error) {
	self.mut.Lock()
	self.rsema += 1
	if 0 == self.rsema {
		self.rsema -= 1 // fail again at next call
		self.mut.Unlock()
		return nil, newError(ReadLimitError, "test only")
	}
	self.mut.Unlock()

	return self.Transport.ReadBytes()
}

// WriteBytes errors if SetWriteLimit has been exceeded.
// Otherwise data is written to the underlaying Transport.
func (self *LimitTransport) WriteBytes(data []byte) error {
	self.mut.Lock()
	self.wsema += 1
	if 0 == self.wsema {
		self.wsema -= 1 // fail again at next call
		self.mut.Unlock()
		return newError(WriteLimitError, "test only")
	}
	self.mut.Unlock()

	return self.Transport.WriteBytes(data)
}

var _ Transport = &LimitTransport{}
