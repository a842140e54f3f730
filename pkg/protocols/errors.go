package protocols

import (
	"code.armistice.org/golang/internal/utils"
)

type errorFlag string

const (
	Error = errorFlag("protocols: error")

	// OK is not a failure. A StateFunc returns an error wrapping OK to end a protocol run.
	OK = errorFlag("protocols: OK")
)

func (self errorFlag) Error() string {
	return string(self)
}

func (self errorFlag) Unwrap() error {
	if Error == self || OK == self {
		return nil
	}
	return Error
}

func wrapError(cause error, msg string, args ...any) error {
	return utils.WrapError(cause, 1, Error, msg, args...)
}
