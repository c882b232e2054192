package domain

import (
	"errors"
	"fmt"
)

// ErrKind classifies every error the billing core returns. Handlers map kinds
// to HTTP statuses; callers decide retry policy by kind, never by message.
type ErrKind int

const (
	KindUnknown ErrKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPersistence
)

type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a store failure. The core does not retry these; the
// caller owns its backoff policy.
func PersistenceError(op string, err error) error {
	return &Error{Kind: KindPersistence, Msg: op, Err: err}
}

// KindOf extracts the error kind, KindUnknown for foreign errors.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind ErrKind) bool { return KindOf(err) == kind }
