package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors the service returns to callers.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NotFound"
	KindInvalidInput ErrorKind = "InvalidInput"
)

// Error is the error value returned by service operations. Msg is meant to be
// shown to the caller verbatim.
type Error struct {
	Kind ErrorKind
	Msg  string
}

// Kind sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// InvalidInput builds an InvalidInput error.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindInvalidInput:
		return target == ErrInvalidInput
	}
	return false
}

// AsError unwraps err to an *Error. It returns nil when err is not a
// service error, which callers treat as an infrastructure failure.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
