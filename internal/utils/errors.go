package utils

import (
	"fmt"
	"path"
	"runtime"
)

// RaisedErr is the error type returned by every Armistice package.
// It records where the error was raised and carries an optional package flag,
// so callers can match whole error families with errors.Is.
//
// Packages declare a private errorFlag string type with a set of constant flags,
// then build their errors through small newError/wrapError helpers that call
// NewError/WrapError with skip set to 1.
type RaisedErr struct {
	// Flag groups related errors (eg wire.ErrMalformedElement).
	Flag error

	// Cause is the error that triggered this one, if any.
	Cause error

	// Msg describes what happened.
	Msg string

	// Filename is "<pkgdir>/<file>.go" of the code that raised the error.
	Filename string

	// Line is the line in Filename that raised the error.
	Line int
}

// Error implements the error interface.
func (self RaisedErr) Error() string {
	msg := fmt.Sprintf("%s: %s (%s:%d)", path.Dir(self.Filename), self.Msg, path.Base(self.Filename), self.Line)
	if nil != self.Cause {
		msg += ": " + self.Cause.Error()
	}
	return msg
}

// Unwrap returns the flag and the cause of the RaisedErr.
func (self RaisedErr) Unwrap() []error {
	rv := make([]error, 0, 2)
	if nil != self.Flag {
		rv = append(rv, self.Flag)
	}
	if nil != self.Cause {
		rv = append(rv, self.Cause)
	}
	return rv
}

// NewError returns a RaisedErr{} that contains file & line of where it was called.
//
// skip controls caller frame resolution: 0 when calling NewError directly,
// 1 when calling it from a package newError helper.
func NewError(skip int, flag error, msg string, args ...any) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	err := RaisedErr{Flag: flag, Msg: msg}
	addCallerFileLine(skip, &err)
	return err
}

// WrapError returns a RaisedErr{} with cause attached.
// If cause is nil, WrapError returns nil.
func WrapError(cause error, skip int, flag error, msg string, args ...any) error {
	if nil == cause {
		return nil
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	err := RaisedErr{Flag: flag, Cause: cause, Msg: msg}
	addCallerFileLine(skip, &err)
	return err
}

func addCallerFileLine(skip int, err *RaisedErr) {
	_, filename, line, ok := runtime.Caller(2 + skip)
	if !ok {
		return
	}
	dirname, filename := path.Split(filename)
	err.Filename = path.Join(path.Base(dirname), filename)
	err.Line = line
}
