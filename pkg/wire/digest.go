package wire

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"hash"
)

// DigestSize is the size of a message Digest.
const DigestSize = sha256.Size

// Digest is the SHA-256 hash of the critical fields of a message, in encoding order.
type Digest [DigestSize]byte

// Equal compares self and other in constant time.
func (self Digest) Equal(other Digest) bool {
	return 1 == subtle.ConstantTimeCompare(self[:], other[:])
}

func (self Digest) String() string {
	return hex.EncodeToString(self[:])
}

func newDigestHash() hash.Hash {
	return sha256.New()
}

func sumDigest(h hash.Hash) Digest {
	var rv Digest
	if nil == h {
		h = newDigestHash()
	}
	h.Sum(rv[:0])
	return rv
}
