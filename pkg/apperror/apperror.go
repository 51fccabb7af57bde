// Package apperror defines the error kinds returned by the platform core.
// Kinds are transport independent; HTTPStatus is the single place that maps
// them to response codes.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	AuthenticationRequired      Kind = "AuthenticationRequired"
	AccessDenied                Kind = "AccessDenied"
	SubscriptionRequired        Kind = "SubscriptionRequired"
	PaymentRequired             Kind = "PaymentRequired"
	UnknownVisibility           Kind = "UnknownVisibility"
	DuplicateActiveSubscription Kind = "DuplicateActiveSubscription"
	AlreadyUnlocked             Kind = "AlreadyUnlocked"
	DuplicateVote               Kind = "DuplicateVote"
	NotFound                    Kind = "NotFound"
	ValidationError             Kind = "ValidationError"
	Internal                    Kind = "Internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind: errors.Is(err, &Error{Kind: NotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// Internal for anything else.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns a client-safe message. Internal errors never leak details.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return "Internal server error"
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case AuthenticationRequired:
		return http.StatusUnauthorized
	case AccessDenied, SubscriptionRequired, UnknownVisibility:
		return http.StatusForbidden
	case PaymentRequired:
		return http.StatusPaymentRequired
	case DuplicateActiveSubscription, AlreadyUnlocked, DuplicateVote:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case ValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
