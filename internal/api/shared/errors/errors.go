package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is the machine readable part of an error response
type ErrorCode string

const (
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeInternalError    ErrorCode = "internal_error"
	ErrCodeDatabaseError    ErrorCode = "database_error"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeValidationFailed: http.StatusUnprocessableEntity,
	ErrCodeInternalError:    http.StatusInternalServerError,
	ErrCodeDatabaseError:    http.StatusInternalServerError,
}

// APIError is the {"code", "message"} envelope returned by every failing route
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// HTTPStatus returns the response status for the error code, 500 for unknown codes
func (e *APIError) HTTPStatus() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(code ErrorCode, message string, details []string) *APIError {
	e := &APIError{Code: code, Message: message}
	for i, d := range details {
		if i > 0 {
			e.Details += ", "
		}
		e.Details += d
	}
	return e
}

func NewBadRequestError(message string, details ...string) *APIError {
	return newError(ErrCodeBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *APIError {
	return newError(ErrCodeNotFound, message, details)
}

// NewValidationError reports query parameters that parsed but are out of range
func NewValidationError(details ...string) *APIError {
	return newError(ErrCodeValidationFailed, "Validation failed", details)
}

func NewInternalError(message string, details ...string) *APIError {
	return newError(ErrCodeInternalError, message, details)
}

// NewDatabaseError wraps a store failure. The cause is logged but not serialized.
func NewDatabaseError(message string, cause error) *APIError {
	e := newError(ErrCodeDatabaseError, message, nil)
	e.cause = cause
	return e
}
