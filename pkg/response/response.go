package response

import (
	"errors"
)

// Error is a sentinel that knows its HTTP status and, optionally, a stable
// machine-readable code.
type Error struct {
	Code int
	Slug string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

func NewCodedError(code int, slug, err string) error {
	return &Error{Code: code, Slug: slug, Err: errors.New(err)}
}
