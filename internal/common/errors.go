package common

import (
	"errors"
	"net/http"
)

// Error codes rendered in the API error envelope.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeMissingField     = "MISSING_FIELD"
	CodeInvalidItems     = "INVALID_ITEMS"
	CodeInvalidField     = "INVALID_FIELD"
	CodeUnknownCoupon    = "UNKNOWN_COUPON"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeIdempotentReplay = "IDEMPOTENT_REPLAY"
	CodeIdempotencyReuse = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// BadRequest wraps err as a 400 with the given code and details.
func BadRequest(code string, err error, details any) *AppError {
	return &AppError{Code: code, Message: err.Error(), HTTPStatus: http.StatusBadRequest, Err: err, Details: details}
}

// WithDetails attaches details and returns the same error.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
