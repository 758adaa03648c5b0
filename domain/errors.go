package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across storage and transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeCanceled     ErrorCode = "CANCELED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error by code and message so sentinel errors work with errors.Is
// even after being wrapped with a cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrInvalidArgument = NewError(ErrCodeInvalid, "invalid argument")
	ErrAlreadyDeleted  = NewError(ErrCodeInvalidState, "entity already deleted")
	ErrLoginExists     = NewError(ErrCodeConflict, "login already exists")
	ErrProfileType     = NewError(ErrCodeInvalidState, "profile payload does not match requested type")
	ErrConflict        = NewError(ErrCodeConflict, "conflicting write")
)

// MissingArgument reports a required argument that was nil or empty.
func MissingArgument(name string) error {
	return WrapError(ErrCodeInvalid, "invalid argument", fmt.Errorf("%s is required", name))
}

// Canceled classifies a context error so callers can branch on the code
// while errors.Is(err, context.Canceled) keeps working.
func Canceled(err error) error {
	if err == nil {
		err = context.Canceled
	}
	return WrapError(ErrCodeCanceled, "operation canceled", err)
}

// Unavailable classifies a backing-store failure.
func Unavailable(op string, err error) error {
	return WrapError(ErrCodeUnavailable, op+" failed", err)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

var errNegativeCount = errors.New("access failed count cannot be negative")

func errUserDeleted(id string) error { return fmt.Errorf("user %q was already deleted", id) }

func errRoleDeleted(id string) error { return fmt.Errorf("role %q was already deleted", id) }
