package rootstore

import (
	"code.armistice.org/golang/internal/utils"
)

type errorFlag string

const (
	Error            = errorFlag("rootstore: error")
	ErrAlreadyStored = errorFlag("rootstore: sealed root already stored")
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
