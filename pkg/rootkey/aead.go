package rootkey

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"code.armistice.org/golang/internal/utils"
)

const (
	AEAD_XCHACHA20_POLY1305 = "XChaCha20Poly1305"
	AEAD_AES256_GCM         = "AES256GCM"

	// DefaultAEAD is used when no algorithm is named.
	DefaultAEAD = AEAD_XCHACHA20_POLY1305
)

// aeadKeySize is the key size of every registered AEAD.
const aeadKeySize = 32

type aeadFactory struct {
	// id marks sealed data, it must never be reused for another algorithm.
	id  byte
	new func(key []byte) (cipher.AEAD, error)
}

var aeadRegistry = utils.NewRegistry[string, aeadFactory]()

func mustRegisterAEAD(name string, factory aeadFactory) {
	err := utils.RegistrySet(aeadRegistry, name, factory)
	if nil != err {
		panic(err)
	}
}

func getAEAD(name string) (aeadFactory, error) {
	if "" == name {
		name = DefaultAEAD
	}
	factory, found := utils.RegistryGet(aeadRegistry, name)
	if !found {
		return factory, newError(ErrUnsupportedAEAD, "unknown aead %q", name)
	}
	return factory, nil
}

// Algorithms lists the supported AEAD names.
func Algorithms() []string {
	return utils.RegistryNames(aeadRegistry)
}

func newXChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.NewX(key)
}

func newAES256GCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if nil != err {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func init() {
	mustRegisterAEAD(AEAD_XCHACHA20_POLY1305, aeadFactory{id: 1, new: newXChaCha20Poly1305})
	mustRegisterAEAD(AEAD_AES256_GCM, aeadFactory{id: 2, new: newAES256GCM})
}
