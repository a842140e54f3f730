// Package rootstore keeps the sealed root authority of a device.
package rootstore

import (
	"bytes"
	"context"
	"sync"
)

// Store holds the sealed root snapshot of one device.
//
// Save is write once, mirroring one shot provisioning: a second Save errors with
// ErrAlreadyStored and leaves the stored value unchanged.
type Store interface {
	// Load returns the sealed snapshot and true, or false if nothing was saved.
	Load(ctx context.Context) ([]byte, bool, error)

	// Save stores the sealed snapshot.
	Save(ctx context.Context, sealed []byte) error
}

// MemStore is a Store that keeps the snapshot in memory.
type MemStore struct {
	mut    sync.Mutex
	sealed []byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (self *MemStore) Load(_ context.Context) ([]byte, bool, error) {
	self.mut.Lock()
	defer self.mut.Unlock()

	if nil == self.sealed {
		return nil, false, nil
	}
	return bytes.Clone(self.sealed), true, nil
}

func (self *MemStore) Save(_ context.Context, sealed []byte) error {
	self.mut.Lock()
	defer self.mut.Unlock()

	if nil != self.sealed {
		return newError(ErrAlreadyStored, "memory store already holds a sealed root")
	}
	self.sealed = append([]byte{}, sealed...)
	return nil
}

var _ Store = &MemStore{}
