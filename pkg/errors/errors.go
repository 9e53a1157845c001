package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeUpstreamStatus indicates an external service answered with a non-success status
	ErrorTypeUpstreamStatus ErrorType = "UPSTREAM_STATUS"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	// Details carries the upstream payload (decoded JSON or plain text) when one is available.
	Details interface{}
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamStatusError creates an error for an upstream that reported failure in its payload.
func NewUpstreamStatusError(message string, details interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeUpstreamStatus,
		Message: message,
		Details: details,
	}
}

// WithDetails attaches an upstream payload and returns the same error.
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal when err is not an AppError.
func TypeOf(err error) ErrorType {
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// DetailsOf returns the innermost upstream payload attached to err's chain,
// falling back to the message of the root cause.
func DetailsOf(err error) interface{} {
	if err == nil {
		return nil
	}
	var details interface{}
	root := err
	for e := err; e != nil; e = errors.Unwrap(e) {
		if appErr, ok := e.(*AppError); ok && appErr.Details != nil {
			details = appErr.Details
		}
		root = e
	}
	if details != nil {
		return details
	}
	if appErr, ok := root.(*AppError); ok {
		return appErr.Message
	}
	return root.Error()
}
