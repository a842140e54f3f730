package schema

import (
	"crypto/ed25519"
	"encoding/hex"

	"code.armistice.org/golang/pkg/wire"
)

const (
	tagEd25519 = 0
)

// PublicKey is a root key. Each algorithm is a distinct variant, encoded as a
// message holding one field whose tag names the algorithm.
type PublicKey interface {
	wire.Message

	// Algorithm names the key type.
	Algorithm() string

	// Bytes returns a copy of the raw key.
	Bytes() []byte

	isPublicKey()
}

// Ed25519PublicKey is a 32 bytes Ed25519 public key.
type Ed25519PublicKey [ed25519.PublicKeySize]byte

// NewEd25519PublicKey copies key into an Ed25519PublicKey.
func NewEd25519PublicKey(key []byte) (Ed25519PublicKey, error) {
	var rv Ed25519PublicKey
	if len(key) != len(rv) {
		return rv, newError(ErrInvalidKey, "ed25519 key of %d bytes", len(key))
	}
	copy(rv[:], key)
	return rv, nil
}

func (_ Ed25519PublicKey) Algorithm() string {
	return "ed25519"
}

func (self Ed25519PublicKey) Bytes() []byte {
	return append([]byte(nil), self[:]...)
}

// Ed25519 returns self as a crypto/ed25519 key, usable to verify signatures.
func (self Ed25519PublicKey) Ed25519() ed25519.PublicKey {
	return ed25519.PublicKey(self.Bytes())
}

func (self Ed25519PublicKey) String() string {
	return "ed25519:" + hex.EncodeToString(self[:])
}

func (self Ed25519PublicKey) Encode(enc *wire.Encoder) error {
	return enc.Bytes(tagEd25519, true, self[:])
}

func (self Ed25519PublicKey) EncodedLen() int {
	return wire.BytesLen(tagEd25519, len(self))
}

func (_ Ed25519PublicKey) isPublicKey() {}

var _ PublicKey = Ed25519PublicKey{}

// DecodePublicKey reads a PublicKey message. dec must hold exactly one key.
func DecodePublicKey(dec *wire.Decoder) (PublicKey, error) {
	hdr, err := dec.DecodeHeader()
	if nil != err {
		return nil, err
	}
	err = wire.CheckCritical(hdr, true)
	if nil != err {
		return nil, err
	}

	var rv PublicKey
	switch hdr.Tag {
	case tagEd25519:
		data, err := dec.DecodeFixedBytes(ed25519.PublicKeySize)
		if nil != err {
			return nil, err
		}
		key, _ := NewEd25519PublicKey(data)
		rv = key
	default:
		return nil, wire.UnexpectedField(hdr)
	}

	return rv, dec.Finish()
}
