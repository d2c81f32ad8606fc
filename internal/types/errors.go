package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable code attached to every surfaced error.
type ErrorCode string

const (
	ErrValidation        ErrorCode = "VALIDATION"
	ErrUpstreamAuth      ErrorCode = "UPSTREAM_AUTH"
	ErrUpstreamRateLimit ErrorCode = "UPSTREAM_RATE_LIMIT"
	ErrUpstreamTimeout   ErrorCode = "UPSTREAM_TIMEOUT"
	ErrEmptyResponse     ErrorCode = "UPSTREAM_EMPTY_RESPONSE"
	ErrMalformedResponse ErrorCode = "UPSTREAM_MALFORMED_RESPONSE"
	ErrInternal          ErrorCode = "INTERNAL"
)

// Error carries a code, a user-facing message, the HTTP status it maps to, and
// whether a retry wrapper may try the operation again.
type Error struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: statusFor(code), Retryable: retryableFor(code)}
}

func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

func statusFor(code ErrorCode) int {
	switch code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUpstreamAuth:
		return http.StatusUnauthorized
	case ErrUpstreamRateLimit:
		return http.StatusTooManyRequests
	case ErrUpstreamTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func retryableFor(code ErrorCode) bool {
	switch code {
	case ErrValidation, ErrUpstreamAuth, ErrUpstreamRateLimit:
		return false
	default:
		return true
	}
}

// AsError unwraps err to a *Error, or wraps it as ErrInternal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(ErrInternal, "unexpected error").WithCause(err)
}

// IsRetryable reports whether a retry wrapper may attempt err's operation again.
// Unknown errors (network failures and the like) are retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}
