package boltdb

import (
	"code.armistice.org/golang/internal/utils"
	"code.armistice.org/golang/pkg/rootstore"
)

func newError(flag error, msg string, args ...any) error {
	return utils.NewError(1, flag, msg, args...)
}

func wrapError(cause error, msg string, args ...any) error {
	return utils.WrapError(cause, 1, rootstore.Error, msg, args...)
}
