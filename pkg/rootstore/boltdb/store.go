// Package boltdb provides a persistent rootstore.Store that keeps sealed roots in a file.
package boltdb

import (
	"bytes"
	"context"
	"crypto"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
	_ "golang.org/x/crypto/blake2s"

	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/pkg/rootstore"
)

const (
	connectTimeout = 5 * time.Second
	hashAlgo       = crypto.BLAKE2s_256
	bucketName     = "sealedRoot"
)

// record is the bucket value, keyed by the hash of the device label.
type record struct {
	Device  string `cbor:"1,keyasint"`
	Sealed  []byte `cbor:"2,keyasint"`
	SavedAt int64  `cbor:"3,keyasint"`
}

type sealedRootStore struct {
	dbpath string
	device string
	key    []byte
}

// New returns a Store that persists the sealed root of device in a single file boltdb database.
// One database may hold the roots of several devices.
// It errors if the database schema can not be created.
func New(dbpath string, device string) (rootstore.Store, error) {
	store := sealedRootStore{dbpath: dbpath, device: device, key: hash([]byte(device))}

	db, err := bolt.Open(dbpath, 0600, &bolt.Options{Timeout: connectTimeout})
	if nil != err {
		return nil, wrapError(err, "failed connecting to database")
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return wrapError(err, "failed %s bucket creation", bucketName)
	})
	if nil != err {
		return nil, wrapError(err, "failed db initialization")
	}

	return store, nil
}

// Load returns the sealed root of the store device.
func (self sealedRootStore) Load(ctx context.Context) ([]byte, bool, error) {
	db, err := bolt.Open(self.dbpath, 0600, &bolt.Options{Timeout: connectTimeout, ReadOnly: true})
	if nil != err {
		return nil, false, wrapError(err, "failed connecting to database")
	}
	defer db.Close()

	var rec record
	var found bool
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if nil == bucket {
			return newError(rootstore.Error, "missing %s bucket", bucketName)
		}
		srzrec := bucket.Get(self.key)
		if nil == srzrec {
			return nil
		}
		found = true
		return wrapError(cbor.Unmarshal(srzrec, &rec), "failed cbor.Unmarshal(record)")
	})
	if nil != err {
		return nil, false, err
	}
	if found && self.device != rec.Device {
		return nil, false, newError(rootstore.Error, "record belongs to device %q", rec.Device)
	}
	if found {
		observability.GetObservability(ctx).Log().Debug(
			"loaded sealed root",
			"device", self.device,
			"savedAt", time.Unix(rec.SavedAt, 0).UTC(),
		)
	}

	return bytes.Clone(rec.Sealed), found, nil
}

// Save stores sealed. It errors with rootstore.ErrAlreadyStored if the device root was saved before.
func (self sealedRootStore) Save(ctx context.Context, sealed []byte) error {
	srzrec, err := cbor.Marshal(record{Device: self.device, Sealed: sealed, SavedAt: time.Now().Unix()})
	if nil != err {
		return wrapError(err, "failed cbor.Marshal(record)")
	}

	db, err := bolt.Open(self.dbpath, 0600, &bolt.Options{Timeout: connectTimeout})
	if nil != err {
		return wrapError(err, "failed connecting to database")
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if nil == bucket {
			return newError(rootstore.Error, "missing %s bucket", bucketName)
		}
		if nil != bucket.Get(self.key) {
			return newError(rootstore.ErrAlreadyStored, "device %q root already stored", self.device)
		}
		return wrapError(bucket.Put(self.key, srzrec), "failed storing record in bucket")
	})
	if nil != err {
		return err
	}
	observability.GetObservability(ctx).Log().Debug("saved sealed root", "device", self.device)

	return nil
}

// hash returns data digest
//
// digest is calculated using the hash function referenced by the hashAlgo constant
func hash(data []byte) []byte {
	h := hashAlgo.New()
	h.Write(data)
	return h.Sum(nil)
}
