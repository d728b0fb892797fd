package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies an error independently of where it was raised.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindInvalidInput Kind = "invalid_input"
	KindTransport    Kind = "transport_failure"
	// KindIncomplete marks an asset whose chunks do not cover its declared size yet.
	KindIncomplete Kind = "incomplete"
)

type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op, format string, args ...any) *Error {
	return New(KindNotFound, op, fmt.Sprintf(format, args...))
}

func Unauthorized(op, format string, args ...any) *Error {
	return New(KindUnauthorized, op, fmt.Sprintf(format, args...))
}

func InvalidInput(op, format string, args ...any) *Error {
	return New(KindInvalidInput, op, fmt.Sprintf(format, args...))
}

func Incomplete(op, format string, args ...any) *Error {
	return New(KindIncomplete, op, fmt.Sprintf(format, args...))
}

func Transport(op string, err error) *Error {
	return Wrap(KindTransport, op, err)
}

// KindOf returns the kind of the outermost *Error in err's chain.
// Errors that carry no kind are reported as KindTransport.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromDB maps a storage error onto a kind. Errors that already carry a kind
// pass through untouched.
func FromDB(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, op, err)
	}
	return Wrap(KindTransport, op, err)
}
