// Package apperr defines the typed failures surfaced to API callers.
//
// Errors cross module boundaries through mono request-reply services, where
// only the error text survives. Encode and Parse carry the Kind across that
// hop so callers can still branch on it.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	Unauthenticated    Kind = "UNAUTHENTICATED"
	Forbidden          Kind = "FORBIDDEN"
	NotFound           Kind = "NOT_FOUND"
	DuplicateUsername  Kind = "DUPLICATE_USERNAME"
	DuplicateEmail     Kind = "DUPLICATE_EMAIL"
	DuplicateReview    Kind = "DUPLICATE_REVIEW"
	InvalidCredentials Kind = "INVALID_CREDENTIALS"
	ExpiredToken       Kind = "EXPIRED_TOKEN"
	InvalidToken       Kind = "INVALID_TOKEN"
	Validation         Kind = "VALIDATION_ERROR"
	Internal           Kind = "INTERNAL"
)

var kinds = []Kind{
	Unauthenticated,
	Forbidden,
	NotFound,
	DuplicateUsername,
	DuplicateEmail,
	DuplicateReview,
	InvalidCredentials,
	ExpiredToken,
	InvalidToken,
	Validation,
}

// Error is a failure with a caller-visible kind and message.
type Error struct {
	Kind    Kind
	Message string
}

// Error returns the caller-visible message.
func (e *Error) Error() string {
	return e.Message
}

// Extensions exposes the kind as a GraphQL error extension.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Kind)}
}

// New creates an Error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or Internal when err is not typed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is a typed failure of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Encode flattens a typed failure into "[KIND] message" so that the kind
// survives serialization. Untyped errors are returned unchanged.
func Encode(err error) error {
	var e *Error
	if err == nil || !errors.As(err, &e) {
		return err
	}
	return fmt.Errorf("[%s] %s", e.Kind, e.Message)
}

// Parse restores a typed failure from a message produced by Encode. It
// reports false when msg does not start with a known kind marker.
func Parse(msg string) (*Error, bool) {
	for _, k := range kinds {
		marker := "[" + string(k) + "] "
		if strings.HasPrefix(msg, marker) {
			return &Error{Kind: k, Message: strings.TrimPrefix(msg, marker)}, true
		}
	}
	return nil, false
}
