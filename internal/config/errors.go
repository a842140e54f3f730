package config

import (
	"code.armistice.org/golang/internal/utils"
)

type errorFlag string

const (
	Error      = errorFlag("config: error")
	ErrInvalid = errorFlag("config: invalid configuration")
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

func wrapError(cause error, msg string, args ...any) error {
	return utils.WrapError(cause, 1, Error, msg, args...)
}
