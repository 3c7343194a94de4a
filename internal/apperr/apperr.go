// Package apperr defines the error taxonomy shared by the engine services.
// Controllers map each kind onto an HTTP status; services never retry
// internally, so callers can classify and decide.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindConflict: the caller raced with itself, e.g. starting a test that
	// already has a live attempt. Recoverable by switching to resume.
	KindConflict Kind = iota + 1
	// KindNotFound: referenced entity does not exist, or an answer was
	// submitted against an attempt that is no longer open.
	KindNotFound
	// KindValidation: the request is structurally wrong (option not part of
	// the question, malformed id). Never worth retrying.
	KindValidation
	// KindStorage: transient persistence failure. Safe to retry blindly
	// because every engine write is idempotent or conditional.
	KindStorage
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Storage(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Msg: fmt.Sprintf(format, args...), Err: err}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsConflict(err error) bool   { return kindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return kindOf(err) == KindNotFound }
func IsValidation(err error) bool { return kindOf(err) == KindValidation }
func IsStorage(err error) bool    { return kindOf(err) == KindStorage }
