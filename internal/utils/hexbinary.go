package utils

import (
	"encoding/hex"
)

// HexBinary is a byte slice that reads and writes itself as hex text.
// It is used for secrets and digests found in configuration files.
type HexBinary []byte

func (self *HexBinary) UnmarshalText(text []byte) error {
	dst := make([]byte, 0, hex.DecodedLen(len(text)))
	dst, err := hex.AppendDecode(dst, text)
	if nil != err {
		return err
	}
	*self = HexBinary(dst)
	return nil
}

func (self HexBinary) MarshalText() ([]byte, error) {
	return hex.AppendEncode(nil, []byte(self)), nil
}

func (self HexBinary) String() string {
	return hex.EncodeToString(self)
}
