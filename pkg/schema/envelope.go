package schema

import (
	"code.armistice.org/golang/pkg/wire"
)

// Request is a message a host sends to a device.
// Variants: ProvisionRequest.
type Request interface {
	wire.Message
	isRequest()
}

// Response is a message a device returns to a host.
// Variants: ProvisionResponse.
type Response interface {
	wire.Message
	isResponse()
}

const (
	requestTagProvision  = 0
	responseTagProvision = 0
)

// RequestEnvelope encodes a Request as a message holding one field whose tag names
// the variant.
type RequestEnvelope struct {
	Request Request
}

func (self RequestEnvelope) tag() (uint64, error) {
	switch self.Request.(type) {
	case ProvisionRequest:
		return requestTagProvision, nil
	default:
		return 0, newError(ErrUnknownVariant, "unsupported request type %T", self.Request)
	}
}

func (self RequestEnvelope) Encode(enc *wire.Encoder) error {
	tag, err := self.tag()
	if nil != err {
		return err
	}
	return enc.Message(tag, true, self.Request)
}

func (self RequestEnvelope) EncodedLen() int {
	tag, err := self.tag()
	if nil != err {
		return 0
	}
	return wire.MessageLen(tag, self.Request)
}

// ResponseEnvelope encodes a Response the same way RequestEnvelope encodes a Request.
type ResponseEnvelope struct {
	Response Response
}

func (self ResponseEnvelope) tag() (uint64, error) {
	switch self.Response.(type) {
	case ProvisionResponse:
		return responseTagProvision, nil
	default:
		return 0, newError(ErrUnknownVariant, "unsupported response type %T", self.Response)
	}
}

func (self ResponseEnvelope) Encode(enc *wire.Encoder) error {
	tag, err := self.tag()
	if nil != err {
		return err
	}
	return enc.Message(tag, true, self.Response)
}

func (self ResponseEnvelope) EncodedLen() int {
	tag, err := self.tag()
	if nil != err {
		return 0
	}
	return wire.MessageLen(tag, self.Response)
}

// MarshalRequest encodes req into a new buffer.
func MarshalRequest(req Request) ([]byte, error) {
	env := RequestEnvelope{Request: req}
	if _, err := env.tag(); nil != err {
		return nil, err
	}
	return wire.Marshal(env)
}

// MarshalResponse encodes resp into buf.
func MarshalResponse(resp Response, buf []byte) ([]byte, error) {
	return wire.MarshalTo(ResponseEnvelope{Response: resp}, buf)
}

// DecodeRequestFrom reads a Request envelope.
func DecodeRequestFrom(dec *wire.Decoder) (Request, error) {
	hdr, err := dec.DecodeHeader()
	if nil != err {
		return nil, err
	}
	if wire.WireTypeMessage != hdr.WireType {
		return nil, wire.UnexpectedField(hdr)
	}
	err = wire.CheckCritical(hdr, true)
	if nil != err {
		return nil, err
	}
	sub, err := dec.DecodeMessage()
	if nil != err {
		return nil, err
	}

	var rv Request
	switch hdr.Tag {
	case requestTagProvision:
		req, err := DecodeProvisionRequest(sub)
		if nil != err {
			return nil, wrapError(err, "invalid provision request")
		}
		rv = req
	default:
		return nil, wire.UnexpectedField(hdr)
	}

	return rv, sub.Finish()
}

// DecodeResponseFrom reads a Response envelope.
func DecodeResponseFrom(dec *wire.Decoder) (Response, error) {
	hdr, err := dec.DecodeHeader()
	if nil != err {
		return nil, err
	}
	if wire.WireTypeMessage != hdr.WireType {
		return nil, wire.UnexpectedField(hdr)
	}
	err = wire.CheckCritical(hdr, true)
	if nil != err {
		return nil, err
	}
	sub, err := dec.DecodeMessage()
	if nil != err {
		return nil, err
	}

	var rv Response
	switch hdr.Tag {
	case responseTagProvision:
		resp, err := DecodeProvisionResponse(sub)
		if nil != err {
			return nil, wrapError(err, "invalid provision response")
		}
		rv = resp
	default:
		return nil, wire.UnexpectedField(hdr)
	}

	return rv, sub.Finish()
}

// DecodeRequest decodes a packet holding exactly one Request.
func DecodeRequest(data []byte) (Request, error) {
	return wire.Unmarshal(data, DecodeRequestFrom)
}

// DecodeResponse decodes a packet holding exactly one Response.
func DecodeResponse(data []byte) (Response, error) {
	return wire.Unmarshal(data, DecodeResponseFrom)
}
