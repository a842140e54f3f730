package root

import (
	"code.armistice.org/golang/internal/utils"
)

type errorFlag string

const (
	Error                 = errorFlag("root: error")
	ErrCapacityExceeded   = errorFlag("root: capacity exceeded")
	ErrInvalidThreshold   = errorFlag("root: invalid threshold")
	ErrInvalidKey         = errorFlag("root: invalid root key")
	ErrAlreadyProvisioned = errorFlag("root: already provisioned")
	ErrSnapshot           = errorFlag("root: invalid snapshot")
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
