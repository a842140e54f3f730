package schema

import (
	"github.com/google/uuid"

	"code.armistice.org/golang/internal/utils"
	"code.armistice.org/golang/pkg/wire"
)

// MaxRootKeys is the largest number of root keys a ProvisionRequest carries.
const MaxRootKeys = 8

// RootKeys is the bounded list of root keys of a ProvisionRequest.
type RootKeys = wire.Vec[PublicKey, wire.Cap8]

const (
	tagRootKeyThreshold = 0
	tagRootKeys         = 1
	tagTimestamp        = 2
	tagDigest           = 3
)

// ProvisionRequest asks an unprovisioned device to adopt RootKeys as its root of trust.
// RootKeyThreshold is the number of root key signatures later operations will require.
type ProvisionRequest struct {
	RootKeyThreshold uint64
	RootKeys         RootKeys

	// Timestamp optionally records when the host built the request.
	Timestamp *Timestamp

	// Digest optionally binds the request critical fields. When present it must
	// equal ComputeDigest, decoding fails otherwise.
	Digest *wire.Digest
}

// NewProvisionRequest returns a ProvisionRequest for keys.
// It errors with wire.ErrCapacity if keys holds more than MaxRootKeys keys.
func NewProvisionRequest(threshold uint64, keys ...PublicKey) (ProvisionRequest, error) {
	rootKeys, err := wire.VecOf[PublicKey, wire.Cap8](keys...)
	if nil != err {
		return ProvisionRequest{}, wrapError(err, "failed collecting root keys")
	}
	return ProvisionRequest{RootKeyThreshold: threshold, RootKeys: rootKeys}, nil
}

func (self ProvisionRequest) keyMessages() []wire.Message {
	msgs := make([]wire.Message, 0, self.RootKeys.Len())
	for _, key := range self.RootKeys.All() {
		msgs = append(msgs, key)
	}
	return msgs
}

func (self ProvisionRequest) encodeCritical(enc *wire.Encoder) error {
	err := enc.UInt64(tagRootKeyThreshold, true, self.RootKeyThreshold)
	if nil != err {
		return err
	}
	err = enc.MessageSeq(tagRootKeys, true, self.keyMessages()...)
	if nil != err {
		return err
	}
	if nil != self.Timestamp {
		err = enc.Message(tagTimestamp, true, *self.Timestamp)
	}
	return err
}

func (self ProvisionRequest) criticalLen() int {
	size := wire.UInt64Len(tagRootKeyThreshold, self.RootKeyThreshold) +
		wire.MessageSeqLen(tagRootKeys, self.keyMessages()...)
	if nil != self.Timestamp {
		size += wire.MessageLen(tagTimestamp, *self.Timestamp)
	}
	return size
}

func (self ProvisionRequest) Encode(enc *wire.Encoder) error {
	err := self.encodeCritical(enc)
	if nil != err {
		return err
	}
	if nil != self.Digest {
		err = enc.Bytes(tagDigest, false, self.Digest[:])
	}
	return err
}

func (self ProvisionRequest) EncodedLen() int {
	size := self.criticalLen()
	if nil != self.Digest {
		size += wire.BytesLen(tagDigest, wire.DigestSize)
	}
	return size
}

// ComputeDigest returns the digest of the request critical fields.
func (self ProvisionRequest) ComputeDigest() (wire.Digest, error) {
	enc := wire.NewEncoder(make([]byte, self.criticalLen()))
	err := self.encodeCritical(enc)
	if nil != err {
		return wire.Digest{}, wrapError(err, "failed encoding critical fields")
	}
	return enc.Digest(), nil
}

// WithDigest returns a copy of self carrying its digest.
func (self ProvisionRequest) WithDigest() (ProvisionRequest, error) {
	digest, err := self.ComputeDigest()
	if nil != err {
		return self, err
	}
	self.Digest = &digest
	return self, nil
}

func (_ ProvisionRequest) isRequest() {}

// DecodeProvisionRequest reads a ProvisionRequest message.
// It errors with wire.ErrCapacity if the message holds more than MaxRootKeys keys and
// with wire.ErrDigestMismatch if a carried digest does not match.
func DecodeProvisionRequest(dec *wire.Decoder) (ProvisionRequest, error) {
	var rv ProvisionRequest

	_, err := dec.DecodeCriticalHeader(tagRootKeyThreshold, wire.WireTypeUInt64)
	if nil != err {
		return rv, err
	}
	rv.RootKeyThreshold, err = dec.DecodeUInt64()
	if nil != err {
		return rv, err
	}

	_, err = dec.DecodeCriticalHeader(tagRootKeys, wire.WireTypeSequence)
	if nil != err {
		return rv, err
	}
	seq, err := dec.DecodeSequence(wire.WireTypeMessage)
	if nil != err {
		return rv, err
	}
	for seq.More() {
		sub, err := seq.DecodeMessage()
		if nil != err {
			return rv, err
		}
		key, err := DecodePublicKey(sub)
		if nil != err {
			return rv, wrapError(err, "invalid root key #%d", seq.Count()-1)
		}
		err = rv.RootKeys.Push(key)
		if nil != err {
			return rv, wrapError(err, "too many root keys")
		}
	}

	for dec.Remaining() > 0 {
		hdr, err := dec.DecodeHeader()
		if nil != err {
			return rv, err
		}
		switch hdr.Tag {
		case tagTimestamp:
			err = wire.CheckCritical(hdr, true)
			if nil != err {
				return rv, err
			}
			sub, err := dec.DecodeMessage()
			if nil != err {
				return rv, err
			}
			ts, err := DecodeTimestamp(sub)
			if nil != err {
				return rv, wrapError(err, "invalid timestamp")
			}
			rv.Timestamp = &ts
		case tagDigest:
			err = wire.CheckCritical(hdr, false)
			if nil != err {
				return rv, err
			}
			digest, err := dec.DecodeDigest()
			if nil != err {
				return rv, err
			}
			rv.Digest = &digest
		default:
			return rv, wire.UnexpectedField(hdr)
		}
	}

	return rv, nil
}

// ProvisionResponse answers a successful ProvisionRequest with the root identifier.
type ProvisionResponse struct {
	// UUID is the canonical 36 characters form of the identifier.
	UUID string
}

const (
	tagUUID = 0
	uuidLen = 36
)

// NewProvisionResponse returns the ProvisionResponse carrying id.
func NewProvisionResponse(id uuid.UUID) ProvisionResponse {
	return ProvisionResponse{UUID: id.String()}
}

// ID parses the carried identifier.
func (self ProvisionResponse) ID() (uuid.UUID, error) {
	return parseCanonicalUUID(self.UUID)
}

func (self ProvisionResponse) Encode(enc *wire.Encoder) error {
	_, err := self.ID()
	if nil != err {
		return err
	}
	return enc.String(tagUUID, true, self.UUID)
}

func (self ProvisionResponse) EncodedLen() int {
	return wire.StringLen(tagUUID, self.UUID)
}

func (_ ProvisionResponse) isResponse() {}

// DecodeProvisionResponse reads a ProvisionResponse message.
func DecodeProvisionResponse(dec *wire.Decoder) (ProvisionResponse, error) {
	var rv ProvisionResponse
	_, err := dec.DecodeCriticalHeader(tagUUID, wire.WireTypeString)
	if nil != err {
		return rv, err
	}
	rv.UUID, err = dec.DecodeString(uuidLen)
	if nil != err {
		return rv, err
	}
	_, err = rv.ID()
	if nil != err {
		return rv, err
	}
	return rv, dec.Finish()
}

func parseCanonicalUUID(s string) (uuid.UUID, error) {
	if uuidLen != len(s) {
		return uuid.Nil, newError(ErrInvalidUUID, "uuid of %d characters, expected %d", len(s), uuidLen)
	}
	id, err := uuid.Parse(s)
	if nil != err {
		return uuid.Nil, utils.WrapError(err, 0, ErrInvalidUUID, "invalid uuid %q", s)
	}
	if id.String() != s {
		return uuid.Nil, newError(ErrInvalidUUID, "uuid %q is not in canonical form", s)
	}
	return id, nil
}
