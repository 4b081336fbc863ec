package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across layers.
type ErrorCode string

const (
	// ErrCodeValidation marks client-side per-field validation failures;
	// these never reach the network layer.
	ErrCodeValidation ErrorCode = "VALIDATION"
	// ErrCodeConnectivity marks timeouts and transport failures.
	ErrCodeConnectivity ErrorCode = "CONNECTIVITY"
	// ErrCodeRejected marks non-2xx responses other than 401.
	ErrCodeRejected ErrorCode = "REJECTED"
	// ErrCodeAuthExpired marks a 401 from any endpoint.
	ErrCodeAuthExpired ErrorCode = "AUTH_EXPIRED"
	ErrCodeInternal    ErrorCode = "INTERNAL"
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
	ErrAuthExpired  = NewError(ErrCodeAuthExpired, "session expired, please sign in again")
	ErrConnectivity = NewError(ErrCodeConnectivity, "unable to reach the server, please try again")
	ErrNoResetToken = NewError(ErrCodeValidation, "reset link is invalid or has expired")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// UserMessage extracts the human-readable message for display, falling
// back to a generic string for unclassified errors.
func UserMessage(err error) string {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return "Something went wrong"
}
