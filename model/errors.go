package model

import (
	"errors"
	"fmt"
)

// Standard error codes.
const (
	ErrConfiguration = "CONFIGURATION_ERROR"
	ErrNotFound      = "NOT_FOUND"
	ErrConflict      = "CONFLICT"
	ErrValidation    = "VALIDATION_ERROR"
	ErrInternal      = "INTERNAL_ERROR"
)

// Error is the standard typed error returned by the toolkit. It implements
// the error interface.
//
// Only configuration misuse (programmer error, not data error) surfaces as a
// Go error; data-level validation failures always travel as a
// ValidationResult.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigurationError returns a CONFIGURATION_ERROR. It is returned at
// setup/build time: missing validator on a layer build, missing rule
// endpoints, missing start page, or an unknown resolver with no fallback.
func NewConfigurationError(msg string) *Error {
	return &Error{Code: ErrConfiguration, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *Error {
	return &Error{Code: ErrNotFound, Message: msg}
}

// NewConflictError returns a CONFLICT error.
func NewConflictError(msg string) *Error {
	return &Error{Code: ErrConflict, Message: msg}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError(msg string) *Error {
	return &Error{Code: ErrInternal, Message: msg}
}

// IsConfigurationError reports whether err is a CONFIGURATION_ERROR.
func IsConfigurationError(err error) bool {
	return hasCode(err, ErrConfiguration)
}

// IsNotFoundError reports whether err is a NOT_FOUND error.
func IsNotFoundError(err error) bool {
	return hasCode(err, ErrNotFound)
}

func hasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
