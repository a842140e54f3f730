package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"slices"
	"sync"
)

const packetContentType = "application/octet-stream"

// httpClient is a private interface that simplify mocking http.Client.
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HttpTransport posts each written packet to a device packet endpoint.
// The endpoint reply is kept until the next ReadBytes.
type HttpTransport struct {
	ctx     context.Context
	client  httpClient
	url     string
	maxSize int64

	mut   sync.Mutex
	reply []byte
	ready bool
}

// NewHttpTransport returns an HttpTransport posting to endpoint.
// A nil client means http.DefaultClient.
func NewHttpTransport(ctx context.Context, client httpClient, endpoint string) (*HttpTransport, error) {
	u, err := url.Parse(endpoint)
	if nil != err {
		return nil, wrapError(err, "invalid endpoint")
	}
	if !slices.Contains([]string{"http", "https"}, u.Scheme) {
		return nil, newError(Error, "invalid endpoint scheme %q", u.Scheme)
	}
	if nil == client {
		client = http.DefaultClient
	}
	return &HttpTransport{ctx: ctx, client: client, url: endpoint, maxSize: MaxFrameSize}, nil
}

func (self *HttpTransport) WriteBytes(data []byte) error {
	self.mut.Lock()
	defer self.mut.Unlock()

	self.ready = false
	req, err := http.NewRequestWithContext(self.ctx, http.MethodPost, self.url, bytes.NewReader(data))
	if nil != err {
		return wrapError(err, "failed instantiating http Request")
	}
	req.Header.Set("Content-Type", packetContentType)
	resp, err := self.client.Do(req)
	if nil != err {
		return wrapError(err, "failed http POST request")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 || resp.StatusCode < 200 {
		return newError(Error, "failed http POST request, got status %d", resp.StatusCode)
	}
	reply, err := io.ReadAll(io.LimitReader(resp.Body, self.maxSize+1))
	if nil != err {
		return wrapError(err, "failed reading resp.Body")
	}
	if int64(len(reply)) > self.maxSize {
		return newError(ErrPacketSize, "reply larger than %d", self.maxSize)
	}
	self.reply = reply
	self.ready = true

	return nil
}

func (self *HttpTransport) ReadBytes() ([]byte, error) {
	self.mut.Lock()
	defer self.mut.Unlock()

	if !self.ready {
		return nil, newError(ErrNoReply, "no packet was posted")
	}
	self.ready = false
	return self.reply, nil
}

var _ Transport = &HttpTransport{}
