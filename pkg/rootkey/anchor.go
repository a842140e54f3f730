package rootkey

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/internal/utils"
)

// MinDeviceKeySize is the smallest device secret a TrustAnchor may return.
const MinDeviceKeySize = 16

// generatedKeySize is the size of the secrets FileAnchor generates.
const generatedKeySize = 32

// TrustAnchor supplies the device unique secret the RootKey derives from.
// On hardware it wraps a fused key only the device can read.
type TrustAnchor interface {
	DeviceKey(ctx context.Context) ([]byte, error)
}

// StaticAnchor is a TrustAnchor holding its secret in memory.
type StaticAnchor []byte

// DeviceKey returns a copy of self.
func (self StaticAnchor) DeviceKey(_ context.Context) ([]byte, error) {
	if len(self) < MinDeviceKeySize {
		return nil, newError(ErrDeviceKey, "static secret of %d bytes, need %d", len(self), MinDeviceKeySize)
	}
	return bytes.Clone(self), nil
}

var _ TrustAnchor = StaticAnchor{}

// FileAnchor is a TrustAnchor reading an hex encoded secret from a file.
// It is used by the device simulator in place of a fused hardware key.
type FileAnchor struct {
	Path string

	// Create allows generating a random secret when Path does not exist.
	Create bool
}

// DeviceKey loads the secret from Path, generating it first if allowed.
func (self FileAnchor) DeviceKey(ctx context.Context) ([]byte, error) {
	log := observability.GetObservability(ctx).Log()

	content, err := os.ReadFile(self.Path)
	if errors.Is(err, fs.ErrNotExist) && self.Create {
		content, err = self.generate()
		if nil == err {
			log.Info("generated device secret", "path", self.Path)
		}
	}
	if nil != err {
		return nil, wrapError(ErrDeviceKey, err, "failed loading device secret")
	}

	var secret utils.HexBinary
	err = secret.UnmarshalText(bytes.TrimSpace(content))
	if nil != err {
		return nil, wrapError(ErrDeviceKey, err, "invalid device secret in %s", self.Path)
	}
	if len(secret) < MinDeviceKeySize {
		return nil, newError(ErrDeviceKey, "device secret of %d bytes, need %d", len(secret), MinDeviceKeySize)
	}

	return []byte(secret), nil
}

func (self FileAnchor) generate() ([]byte, error) {
	secret := make(utils.HexBinary, generatedKeySize)
	_, err := rand.Read(secret)
	if nil != err {
		return nil, err
	}
	content, _ := secret.MarshalText()

	err = os.MkdirAll(filepath.Dir(self.Path), 0o700)
	if nil != err {
		return nil, err
	}
	fh, err := os.OpenFile(self.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if nil != err {
		return nil, err
	}
	defer fh.Close()
	_, err = fh.Write(append(content, '\n'))
	if nil != err {
		return nil, err
	}

	return content, nil
}

var _ TrustAnchor = FileAnchor{}
