package utils

type errorFlag string

const (
	Error       = errorFlag("utils: error")
	ErrRange    = errorFlag("utils: index out of range")
	ErrConflict = errorFlag("utils: name already in use")
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
	return NewError(1, flag, msg, args...)
}
