// Package apperr defines the typed errors domain services return. The HTTP
// layer turns the Kind into a status code and a stable machine code.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category of a domain error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound covers missing and inactive resources alike.
	KindNotFound
	KindValidation
	// KindConflict is a duplicate lead or another clash with stored state.
	KindConflict
	// KindForbidden means the caller's role or scope does not allow the action.
	KindForbidden
	KindUnauthorized
	// KindResourceExhausted means a bounded retry budget ran out.
	KindResourceExhausted
	KindInternal
)

type kindInfo struct {
	code   string
	status int
}

var kinds = map[Kind]kindInfo{
	KindNotFound:          {"not_found", http.StatusNotFound},
	KindValidation:        {"validation_error", http.StatusBadRequest},
	KindConflict:          {"conflict", http.StatusConflict},
	KindForbidden:         {"authorization_error", http.StatusForbidden},
	KindUnauthorized:      {"unauthorized", http.StatusUnauthorized},
	KindResourceExhausted: {"resource_exhausted", http.StatusServiceUnavailable},
	KindInternal:          {"internal_error", http.StatusInternalServerError},
}

// Code returns the machine-readable identifier of the kind.
func (k Kind) Code() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return "unknown_error"
}

// Status returns the HTTP status the kind maps to.
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusBadRequest
}

// Error is a domain error.
type Error struct {
	Kind    Kind
	Message string
	// Op names the failing operation, e.g. "dedup.Check".
	Op string
	// Details is rendered alongside the message.
	Details any
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

// HTTPStatus returns e.Kind.Status().
func (e *Error) HTTPStatus() int { return e.Kind.Status() }

// WithOp sets the operation name and returns e.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches response details and returns e.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Validation(message string) *Error        { return New(KindValidation, message) }
func Conflict(message string) *Error          { return New(KindConflict, message) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func ResourceExhausted(message string) *Error { return New(KindResourceExhausted, message) }

// GetKind returns the Kind of the first *Error in err's chain, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
