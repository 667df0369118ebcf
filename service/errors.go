package service

import (
	"library-api/i18n"
)

// Kind classifies workflow failures. Handlers map kinds to status codes.
type Kind string

const (
	KindInvalidArgument   Kind = "invalid_argument"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindNotAuthenticated  Kind = "not_authenticated"
	KindNotAuthorized     Kind = "not_authorized"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindUpdateFailed      Kind = "update_failed"
	KindStore             Kind = "store_error"
)

// InvalidReservationIDMessage is returned verbatim, untranslated, for any
// reservation id that is not a positive integer.
const InvalidReservationIDMessage = "Invalid reservation ID"

// Error is a workflow failure carrying a localized message.
type Error struct {
	Kind    Kind
	Key     string
	Message string
	// Fields is set for KindValidation only.
	Fields map[string]string
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrNotAuthenticated  = &Error{Kind: KindNotAuthenticated}
	ErrNotAuthorized     = &Error{Kind: KindNotAuthorized}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrUpdateFailed      = &Error{Kind: KindUpdateFailed}
	ErrStore             = &Error{Kind: KindStore}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Key == "" && t.Message == "" && t.Kind == e.Kind
}

func fail(kind Kind, tr *i18n.Translator, key string, cause error) *Error {
	return &Error{Kind: kind, Key: key, Message: tr.T(key), Err: cause}
}

// PartialFailure is a soft failure: the operation produced a usable, empty
// Payload so callers can render "no results", but Cause says the query
// itself failed.
type PartialFailure[T any] struct {
	Payload T
	Message string
	Cause   error
}

func (p *PartialFailure[T]) Error() string {
	return p.Message + ": " + p.Cause.Error()
}

func (p *PartialFailure[T]) Unwrap() error {
	return p.Cause
}
