// Package core provides shared transport utilities for the ingestion pipeline.
package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCode defines standard error codes for pipeline failures
type ErrorCode string

// Standard error codes
const (
	// Input validation errors
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Service errors
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrServiceTimeout     ErrorCode = "SERVICE_TIMEOUT"
	ErrRateLimit          ErrorCode = "RATE_LIMIT"
	ErrNetworkError       ErrorCode = "NETWORK_ERROR"

	// Data errors
	ErrParseError    ErrorCode = "PARSE_ERROR"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// IngestError is a coded error raised by the transport layer
type IngestError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Query      string `json:"query,omitempty"`
	Guidance   string `json:"guidance,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`

	cause error
}

// Error implements the error interface
func (e *IngestError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Guidance != "" {
		msg = fmt.Sprintf("%s. %s", msg, e.Guidance)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is and errors.As
func (e *IngestError) Unwrap() error {
	return e.cause
}

// NewError creates a new IngestError with the given code and message
func NewError(code ErrorCode, message string) *IngestError {
	return &IngestError{
		Code:    string(code),
		Message: message,
	}
}

// WithQuery adds query information to the error
func (e *IngestError) WithQuery(query string) *IngestError {
	e.Query = query
	return e
}

// WithGuidance adds guidance information to the error
func (e *IngestError) WithGuidance(guidance string) *IngestError {
	e.Guidance = guidance
	return e
}

// WithCause attaches the underlying error
func (e *IngestError) WithCause(err error) *IngestError {
	e.cause = err
	return e
}

// ServiceError creates an error for external service failures
func ServiceError(service string, statusCode int, message string) *IngestError {
	var code ErrorCode
	var guidance string

	switch statusCode {
	case http.StatusTooManyRequests:
		code = ErrRateLimit
		guidance = "The service is rate-limited. Lower the request rate or try again later."
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		code = ErrServiceTimeout
		guidance = "The query timed out. Try a smaller bounding box."
	case http.StatusBadRequest:
		code = ErrInvalidInput
		guidance = "The query was rejected. Check the generated Overpass QL."
	case http.StatusInternalServerError:
		code = ErrInternalError
		guidance = "The server encountered an error. This is likely temporary."
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		code = ErrServiceUnavailable
		guidance = "The service is temporarily unavailable."
	default:
		code = ErrServiceUnavailable
		guidance = "Please try again later."
	}

	err := NewError(code, fmt.Sprintf("%s service error: %s", service, message)).
		WithGuidance(guidance)
	err.StatusCode = statusCode
	return err
}

// Code extracts the error code from err, or "" when err is not an IngestError
func Code(err error) ErrorCode {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ErrorCode(ie.Code)
	}
	return ""
}

// IsRetryable reports whether a failed request is worth another attempt.
// Network errors, rate limiting and gateway failures are; client errors,
// parse errors and cancellation are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var ie *IngestError
	if errors.As(err, &ie) {
		switch ie.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		case 0:
			return ie.Code == string(ErrNetworkError)
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
