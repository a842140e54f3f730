package root

import (
	"crypto/sha256"

	"github.com/google/uuid"

	"code.armistice.org/golang/pkg/schema"
	"code.armistice.org/golang/pkg/wire"
)

// RootNamespace scopes root identifiers.
var RootNamespace = uuid.MustParse("6c1f3a52-9d0e-4b7a-8f21-3e5d9c7b0a14")

// Authority is the root of trust of a device: a set of at most 8 public keys and the
// number of them that must sign privileged operations.
//
// The zero Authority is unprovisioned. Provision succeeds at most once, after which
// the Authority never changes. Authority is not safe for concurrent use.
type Authority struct {
	threshold int
	keys      schema.RootKeys
	id        uuid.UUID
}

// New returns an unprovisioned Authority.
func New() *Authority {
	return &Authority{}
}

// Provision commits threshold & keys as the device root of trust and returns
// the root identifier.
//
// Provision errors with ErrAlreadyProvisioned if the Authority was provisioned before,
// with ErrCapacityExceeded if keys holds more than 8 keys and with ErrInvalidThreshold
// unless 1 <= threshold <= len(keys). The Authority is unchanged when it errors.
func (self *Authority) Provision(threshold uint64, keys []schema.PublicKey) (uuid.UUID, error) {
	if self.IsProvisioned() {
		return uuid.Nil, newError(ErrAlreadyProvisioned, "root keys already provisioned")
	}

	for pos, key := range keys {
		if nil == key {
			return uuid.Nil, newError(ErrInvalidKey, "nil root key #%d", pos)
		}
	}

	rootKeys, err := wire.VecOf[schema.PublicKey, wire.Cap8](keys...)
	if nil != err {
		return uuid.Nil, wrapError(ErrCapacityExceeded, err, "can not hold %d root keys", len(keys))
	}
	if threshold < 1 || threshold > uint64(rootKeys.Len()) {
		return uuid.Nil, newError(ErrInvalidThreshold, "threshold %d for %d root keys", threshold, rootKeys.Len())
	}

	id, err := Identifier(threshold, rootKeys)
	if nil != err {
		return uuid.Nil, err
	}

	self.threshold = int(threshold)
	self.keys = rootKeys
	self.id = id

	return id, nil
}

// IsProvisioned returns true once Provision succeeded.
func (self *Authority) IsProvisioned() bool {
	return 0 != self.threshold
}

// Threshold returns the number of signatures required, 0 if unprovisioned.
func (self *Authority) Threshold() int {
	return self.threshold
}

// PublicKeys returns a copy of the root keys.
func (self *Authority) PublicKeys() []schema.PublicKey {
	return self.keys.Items()
}

// ID returns the root identifier and true if the Authority is provisioned.
func (self *Authority) ID() (uuid.UUID, bool) {
	return self.id, self.IsProvisioned()
}

// Identifier derives the root identifier of threshold & keys.
//
// It is the version 8 UUID holding the truncated SHA-256 of RootNamespace followed by the
// wire encoding of ProvisionRequest{threshold, keys}. Equal roots share one identifier.
func Identifier(threshold uint64, keys schema.RootKeys) (uuid.UUID, error) {
	canonical, err := wire.Marshal(schema.ProvisionRequest{RootKeyThreshold: threshold, RootKeys: keys})
	if nil != err {
		return uuid.Nil, wrapError(Error, err, "failed encoding root")
	}
	return uuid.NewHash(sha256.New(), RootNamespace, canonical, 8), nil
}
