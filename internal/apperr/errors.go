package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindUnauthorized      Kind = "unauthorized"
	KindInsufficientStock Kind = "insufficient_stock"
	KindInvalidTransition Kind = "invalid_transition"
	KindInvalidStatus     Kind = "invalid_status"
	KindEmptyCart         Kind = "empty_cart"
	KindInvalidReference  Kind = "invalid_reference"
	KindInternal          Kind = "internal"
)

// Error is the domain error returned by every service. Msg is safe to show to clients.
type Error struct {
	Kind Kind
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

// Is matches another *Error by kind, so errors.Is(err, apperr.ErrEmptyCart) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// Kind-only sentinels for errors.Is.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInvalidStatus     = &Error{Kind: KindInvalidStatus}
	ErrEmptyCart         = &Error{Kind: KindEmptyCart}
	ErrInvalidReference  = &Error{Kind: KindInvalidReference}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return New(KindValidation, format, args...) }
func NotFound(format string, args ...any) *Error   { return New(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error   { return New(KindConflict, format, args...) }
func Forbidden(format string, args ...any) *Error  { return New(KindForbidden, format, args...) }
func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}
func InvalidTransition(format string, args ...any) *Error {
	return New(KindInvalidTransition, format, args...)
}
func InvalidStatus(format string, args ...any) *Error {
	return New(KindInvalidStatus, format, args...)
}
func InvalidReference(format string, args ...any) *Error {
	return New(KindInvalidReference, format, args...)
}

func EmptyCart() *Error { return New(KindEmptyCart, "cart is empty") }

func InsufficientStock(product string) *Error {
	return New(KindInsufficientStock, "insufficient stock for product %s", product)
}

// Internal wraps an infrastructure failure; the cause is kept for logs only.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInsufficientStock, KindInvalidTransition, KindInvalidStatus,
		KindEmptyCart, KindInvalidReference:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message sent over the wire; internal causes are hidden.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal error"
}
