package root

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"code.armistice.org/golang/pkg/schema"
	"code.armistice.org/golang/pkg/wire"
)

// SnapshotVersion is the current Snapshot format.
const SnapshotVersion = 1

// Snapshot is the at rest form of a provisioned Authority.
// Keys holds the wire encoding of each root key.
type Snapshot struct {
	Version   uint     `cbor:"1,keyasint"`
	Threshold uint64   `cbor:"2,keyasint"`
	Keys      [][]byte `cbor:"3,keyasint"`
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if nil != err {
		panic(fmt.Sprintf("root: failed creating CBOR encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		MaxArrayElements:  64,
	}.DecMode()
	if nil != err {
		panic(fmt.Sprintf("root: failed creating CBOR decoder mode: %v", err))
	}
}

// Snapshot returns the at rest form of self. It errors if self is not provisioned.
func (self *Authority) Snapshot() (Snapshot, error) {
	if !self.IsProvisioned() {
		return Snapshot{}, newError(ErrSnapshot, "unprovisioned authority")
	}
	snap := Snapshot{Version: SnapshotVersion, Threshold: uint64(self.threshold)}
	for pos, key := range self.keys.All() {
		srz, err := wire.Marshal(key)
		if nil != err {
			return Snapshot{}, wrapError(ErrSnapshot, err, "failed encoding root key #%d", pos)
		}
		snap.Keys = append(snap.Keys, srz)
	}
	return snap, nil
}

// MarshalBinary encodes the Snapshot of self using deterministic CBOR.
func (self *Authority) MarshalBinary() ([]byte, error) {
	snap, err := self.Snapshot()
	if nil != err {
		return nil, err
	}
	srz, err := encMode.Marshal(snap)
	if nil != err {
		return nil, wrapError(ErrSnapshot, err, "failed CBOR encoding")
	}
	return srz, nil
}

// Restore returns the Authority saved by MarshalBinary.
// The Authority invariants are checked again, a snapshot violating them errors with ErrSnapshot.
func Restore(data []byte) (*Authority, error) {
	var snap Snapshot
	err := decMode.Unmarshal(data, &snap)
	if nil != err {
		return nil, wrapError(ErrSnapshot, err, "failed CBOR decoding")
	}
	return snap.Authority()
}

// Authority rebuilds the provisioned Authority described by self.
func (self Snapshot) Authority() (*Authority, error) {
	if SnapshotVersion != self.Version {
		return nil, newError(ErrSnapshot, "unsupported snapshot version %d", self.Version)
	}
	keys := make([]schema.PublicKey, 0, len(self.Keys))
	for pos, srz := range self.Keys {
		key, err := wire.Unmarshal(srz, schema.DecodePublicKey)
		if nil != err {
			return nil, wrapError(ErrSnapshot, err, "invalid root key #%d", pos)
		}
		keys = append(keys, key)
	}
	auth := New()
	_, err := auth.Provision(self.Threshold, keys)
	if nil != err {
		return nil, wrapError(ErrSnapshot, err, "snapshot violates root invariants")
	}
	return auth, nil
}
