package rootkey

import (
	"context"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"

	"code.armistice.org/golang/internal/observability"
)

const (
	// DO NOT EDIT THOSE CONSTANTS
	kdfSalt      = "armistice:rootkey:v1"
	infoEncKey   = "armistice:rootkey:encryption"
	infoSivKey   = "armistice:rootkey:synthetic-iv"
	sealVersion  = byte(1)
	sealHeadSize = 2
)

// RootKey seals device state at rest with a key derived from a TrustAnchor.
//
// Sealing is deterministic: the nonce is a keyed BLAKE3 hash of the additional data and
// plaintext (synthetic IV), so reusing inputs never reuses a nonce with distinct data.
// Sealed layout: version | aead id | iv | ciphertext.
type RootKey struct {
	algo    string
	factory aeadFactory
	aead    cipher.AEAD
	sivKey  []byte
}

// New fetches the device secret from anchor and derives a RootKey using algo.
// An empty algo selects DefaultAEAD.
func New(ctx context.Context, anchor TrustAnchor, algo string) (*RootKey, error) {
	factory, err := getAEAD(algo)
	if nil != err {
		return nil, err
	}
	if "" == algo {
		algo = DefaultAEAD
	}

	devKey, err := anchor.DeviceKey(ctx)
	if nil != err {
		return nil, wrapError(ErrDeviceKey, err, "failed reading device key")
	}
	defer clear(devKey)

	encKey, err := deriveKey(devKey, infoEncKey)
	if nil != err {
		return nil, err
	}
	defer clear(encKey)
	sivKey, err := deriveKey(devKey, infoSivKey)
	if nil != err {
		return nil, err
	}

	aead, err := factory.new(encKey)
	if nil != err {
		return nil, wrapError(Error, err, "failed instantiating %s", algo)
	}

	observability.GetObservability(ctx).Log().Debug("root key derived", "aead", algo)

	return &RootKey{algo: algo, factory: factory, aead: aead, sivKey: sivKey}, nil
}

// Algorithm returns the AEAD name.
func (self *RootKey) Algorithm() string {
	return self.algo
}

// Seal encrypts & authenticates plaintext, binding it to ad.
func (self *RootKey) Seal(plaintext []byte, ad []byte) ([]byte, error) {
	iv, err := self.syntheticIV(ad, plaintext)
	if nil != err {
		return nil, wrapError(ErrSeal, err, "failed computing synthetic iv")
	}
	head := []byte{sealVersion, self.factory.id}

	out := make([]byte, 0, sealHeadSize+len(iv)+len(plaintext)+self.aead.Overhead())
	out = append(out, head...)
	out = append(out, iv...)

	return self.aead.Seal(out, iv, plaintext, additionalData(head, ad)), nil
}

// Open authenticates & decrypts data produced by Seal with the same ad.
func (self *RootKey) Open(sealed []byte, ad []byte) ([]byte, error) {
	nonceSize := self.aead.NonceSize()
	if len(sealed) < sealHeadSize+nonceSize+self.aead.Overhead() {
		return nil, newError(ErrOpen, "sealed data of %d bytes is too short", len(sealed))
	}
	head := sealed[:sealHeadSize]
	if sealVersion != head[0] {
		return nil, newError(ErrOpen, "unsupported seal version %d", head[0])
	}
	if self.factory.id != head[1] {
		return nil, newError(ErrOpen, "data was not sealed with %s", self.algo)
	}
	iv := sealed[sealHeadSize : sealHeadSize+nonceSize]
	ct := sealed[sealHeadSize+nonceSize:]

	plaintext, err := self.aead.Open(nil, iv, ct, additionalData(head, ad))
	if nil != err {
		return nil, wrapError(ErrOpen, err, "authentication failed")
	}

	expected, err := self.syntheticIV(ad, plaintext)
	if nil != err {
		return nil, wrapError(ErrOpen, err, "failed computing synthetic iv")
	}
	if 1 != subtle.ConstantTimeCompare(expected, iv) {
		return nil, newError(ErrOpen, "synthetic iv mismatch")
	}

	return plaintext, nil
}

// syntheticIV returns BLAKE3-keyed(sivKey, len(ad) | ad | plaintext) truncated to the nonce size.
func (self *RootKey) syntheticIV(ad []byte, plaintext []byte) ([]byte, error) {
	hasher, err := blake3.NewKeyed(self.sivKey)
	if nil != err {
		return nil, err
	}
	var adLen [8]byte
	binary.BigEndian.PutUint64(adLen[:], uint64(len(ad)))
	hasher.Write(adLen[:])
	hasher.Write(ad)
	hasher.Write(plaintext)

	return hasher.Sum(nil)[:self.aead.NonceSize()], nil
}

func additionalData(head []byte, ad []byte) []byte {
	rv := make([]byte, 0, len(head)+len(ad))
	rv = append(rv, head...)
	return append(rv, ad...)
}

func deriveKey(devKey []byte, info string) ([]byte, error) {
	key := make([]byte, aeadKeySize)
	kdf := hkdf.New(sha256.New, devKey, []byte(kdfSalt), []byte(info))
	_, err := io.ReadFull(kdf, key)
	if nil != err {
		return nil, wrapError(Error, err, "failed deriving %s key", info)
	}
	return key, nil
}
