package armistice

import (
	"code.armistice.org/golang/internal/utils"
)

type errorFlag string

const (
	Error                 = errorFlag("armistice: error")
	ErrPersist            = errorFlag("armistice: failed persisting root authority")
	ErrUnsupportedRequest = errorFlag("armistice: unsupported request")
	ErrPacketSize         = errorFlag("armistice: packet too large")
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
