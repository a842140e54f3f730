package client

import (
	"code.armistice.org/golang/internal/utils"
)

type errorFlag string

const (
	Error        = errorFlag("client: error")
	ErrTransport = errorFlag("client: transport failure")
	ErrEncoding  = errorFlag("client: encoding failure")
	ErrDevice    = errorFlag("client: device replied ERROR")
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
