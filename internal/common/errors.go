// Package common defines the error taxonomy shared by the repository,
// service and transport layers. Callers should use errors.Is to match the
// kind sentinels below.
package common

import (
	"errors"
	"fmt"
)

var (
	// Error kinds. Every failure leaving the service layer matches exactly one.
	ErrorBadRequest   = errors.New("bad request")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")
	ErrorNotFound     = errors.New("not found")
	ErrorInternal     = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error is a kinded error carrying a user-visible message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError returns an *Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind that keeps err as its cause.
func Wrap(kind error, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Detail renders the message followed by the cause chain.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

var kinds = []error{ErrorBadRequest, ErrorUnauthorized, ErrorConflict, ErrorNotFound, ErrorInternal}

// KindOf reports which kind err belongs to. Unknown errors are internal.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrorInternal
}

// MessageOf returns the user-visible message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if KindOf(err) == ErrorInternal {
		return "Something went wrong"
	}
	return err.Error()
}
