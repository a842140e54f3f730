package wire

import (
	"fmt"

	"code.armistice.org/golang/internal/utils"
)

type errorFlag string

const (
	Error                    = errorFlag("wire: error")
	ErrUnexpectedFieldHeader = errorFlag("wire: unexpected field header")
	ErrMalformedElement      = errorFlag("wire: malformed element")
	ErrTrailingData          = errorFlag("wire: trailing data")
	ErrLengthExceeded        = errorFlag("wire: length exceeded")
	ErrCapacity              = errorFlag("wire: capacity exceeded")
	ErrBufferTooSmall        = errorFlag("wire: buffer too small")
	ErrDigestMismatch        = errorFlag("wire: digest mismatch")
)

func (self errorFlag) Error() string {
	return string(self)
}

func (self errorFlag) Unwrap() error {
	if Error == self {
		return nil
	}
	return Error
}

func newError(flag errorFlag, msg string, args ...any) error {
	return utils.NewError(1, flag, msg, args...)
}

func wrapError(flag errorFlag, cause error, msg string, args ...any) error {
	return utils.WrapError(cause, 1, flag, msg, args...)
}

// FieldHeaderError reports a field header that the decoder did not expect.
// It is always returned wrapped, use errors.As to retrieve it.
type FieldHeaderError struct {
	Tag      uint64
	WireType WireType
}

func (self *FieldHeaderError) Error() string {
	return fmt.Sprintf("unexpected field tag %d wire type %s", self.Tag, self.WireType)
}

func (self *FieldHeaderError) Unwrap() error {
	return ErrUnexpectedFieldHeader
}

func headerError(tag uint64, wt WireType, msg string, args ...any) error {
	return utils.WrapError(&FieldHeaderError{Tag: tag, WireType: wt}, 1, ErrUnexpectedFieldHeader, msg, args...)
}

// UnexpectedField returns an ErrUnexpectedFieldHeader error for hdr.
// Message decoders use it to reject tags they do not know.
func UnexpectedField(hdr Header) error {
	return utils.WrapError(&FieldHeaderError{Tag: hdr.Tag, WireType: hdr.WireType}, 1, ErrUnexpectedFieldHeader, "unknown field")
}
