package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies pipeline errors so calling surfaces can map them to responses.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation_error"
	KindIneligibleAppeal  Kind = "ineligible_appeal"
	KindInvalidAlertState Kind = "invalid_alert_state"
)

// Error carries a stable kind plus a human-readable detail string.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return New(KindInvalidTransition, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func IneligibleAppeal(format string, args ...interface{}) *Error {
	return New(KindIneligibleAppeal, format, args...)
}

func InvalidAlertState(format string, args ...interface{}) *Error {
	return New(KindInvalidAlertState, format, args...)
}

// KindOf returns the kind of err, or the empty kind when err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err is a pipeline error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the HTTP surface should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidTransition, KindIneligibleAppeal, KindInvalidAlertState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
