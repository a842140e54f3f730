// Package client sends requests to an Armistice token.
package client

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/internal/transport"
	"code.armistice.org/golang/pkg/schema"
)

// errorReply is the packet a token returns when a request fails.
var errorReply = []byte("ERROR")

// Client exchanges one request packet for one reply packet over Transport.
type Client struct {
	Transport transport.Transport
}

// SendRequest sends req and returns the token Response.
//
// It errors with ErrDevice if the token replied with its failure packet, with ErrTransport
// if the packets could not be exchanged and with ErrEncoding if a packet could not be
// encoded or decoded.
func (self Client) SendRequest(ctx context.Context, req schema.Request) (schema.Response, error) {
	log := observability.GetObservability(ctx).Log()

	packet, err := schema.MarshalRequest(req)
	if nil != err {
		return nil, wrapError(ErrEncoding, err, "failed encoding request")
	}
	log.Debug("sending request", "type", requestName(req), "size", len(packet))

	err = self.Transport.WriteBytes(packet)
	if nil != err {
		return nil, wrapError(ErrTransport, err, "failed sending request")
	}
	reply, err := self.Transport.ReadBytes()
	if nil != err {
		return nil, wrapError(ErrTransport, err, "failed reading reply")
	}
	if bytes.Equal(errorReply, reply) {
		return nil, newError(ErrDevice, "request rejected")
	}

	resp, err := schema.DecodeResponse(reply)
	if nil != err {
		return nil, wrapError(ErrEncoding, err, "failed decoding reply")
	}
	return resp, nil
}

// ProvisionOptions controls the optional fields of a provision request.
type ProvisionOptions struct {
	// Timestamp is attached to the request unless it is zero.
	Timestamp time.Time

	// Digest attaches the digest of the request critical fields.
	Digest bool
}

// Provision asks the token to adopt keys as its root of trust.
// It returns the root identifier computed by the token.
func (self Client) Provision(ctx context.Context, threshold uint64, keys []schema.PublicKey, opts ProvisionOptions) (uuid.UUID, error) {
	req, err := schema.NewProvisionRequest(threshold, keys...)
	if nil != err {
		return uuid.Nil, wrapError(ErrEncoding, err, "invalid root keys")
	}
	if !opts.Timestamp.IsZero() {
		ts := schema.NewTimestamp(opts.Timestamp)
		req.Timestamp = &ts
	}
	if opts.Digest {
		req, err = req.WithDigest()
		if nil != err {
			return uuid.Nil, wrapError(ErrEncoding, err, "failed computing digest")
		}
	}

	resp, err := self.SendRequest(ctx, req)
	if nil != err {
		return uuid.Nil, err
	}
	presp, ok := resp.(schema.ProvisionResponse)
	if !ok {
		return uuid.Nil, newError(ErrEncoding, "unexpected %T reply", resp)
	}
	id, err := presp.ID()
	if nil != err {
		return uuid.Nil, wrapError(ErrEncoding, err, "invalid root identifier")
	}

	log := observability.GetObservability(ctx).Log()
	log.Info("token provisioned", "uuid", id.String(), "threshold", threshold, "keys", len(keys))

	return id, nil
}

func requestName(req schema.Request) string {
	switch req.(type) {
	case schema.ProvisionRequest:
		return "provision"
	default:
		return "unknown"
	}
}
