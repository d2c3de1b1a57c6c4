package httpclient

import (
	"errors"
	"fmt"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	// ErrCodeInvalidArgument indicates a malformed request definition.
	ErrCodeInvalidArgument ErrorCode = iota
	// ErrCodeOutOfRange indicates a resource that cannot be resolved without a base URL.
	ErrCodeOutOfRange
	// ErrCodeInvalidURI indicates a base URL or resource that does not parse.
	ErrCodeInvalidURI
	// ErrCodeSerialization indicates the request body could not be serialized.
	ErrCodeSerialization
	// ErrCodeDeserialization indicates the response body could not be decoded.
	ErrCodeDeserialization
	// ErrCodeTransport indicates a network level failure (refused, DNS, TLS).
	ErrCodeTransport
	// ErrCodeTimeout indicates the request timeout elapsed.
	ErrCodeTimeout
	// ErrCodeAborted indicates the caller cancelled the request.
	ErrCodeAborted
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit
	// ErrCodeHTTP indicates any other unsuccessful HTTP status.
	ErrCodeHTTP
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeInvalidURI:
		return "invalid_uri"
	case ErrCodeSerialization:
		return "serialization"
	case ErrCodeDeserialization:
		return "deserialization"
	case ErrCodeTransport:
		return "transport"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeAborted:
		return "aborted"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeHTTP:
		return "http"
	case ErrCodeServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a structured HTTP client error with classification.
type Error struct {
	// StatusCode is the HTTP status code (0 for connection-level errors).
	StatusCode int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Retryable indicates whether the operation can be retried.
	Retryable bool
	// Body is the original response body (may be nil).
	Body []byte
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// DeserializationError carries the response whose body failed to decode.
type DeserializationError struct {
	Response *Response
	Err      error
}

func (e *DeserializationError) Error() string {
	return "httpclient: deserialization: " + e.Err.Error()
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// NewInvalidArgumentError creates a build error for a malformed request.
func NewInvalidArgumentError(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// NewOutOfRangeError creates a build error for an unresolvable resource.
func NewOutOfRangeError(msg string) *Error {
	return &Error{Code: ErrCodeOutOfRange, Message: msg}
}

// NewInvalidURIError wraps a URL parse failure.
func NewInvalidURIError(err error) *Error {
	return &Error{Code: ErrCodeInvalidURI, Message: err.Error(), Err: err}
}

// NewSerializationError wraps a request body serialization failure.
func NewSerializationError(err error) *Error {
	return &Error{Code: ErrCodeSerialization, Message: err.Error(), Err: err}
}

// NewDeserializationError wraps a response body decode failure.
func NewDeserializationError(err error) *Error {
	return &Error{Code: ErrCodeDeserialization, Message: err.Error(), Err: err}
}

// NewTransportError creates a connection error.
func NewTransportError(err error) *Error {
	return &Error{
		Code:      ErrCodeTransport,
		Message:   err.Error(),
		Retryable: true,
		Err:       err,
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{
		Code:      ErrCodeTimeout,
		Message:   err.Error(),
		Retryable: true,
		Err:       err,
	}
}

// NewAbortedError creates a cancellation error.
func NewAbortedError(err error) *Error {
	return &Error{Code: ErrCodeAborted, Message: err.Error(), Err: err}
}

// NewAuthError creates an authentication error.
func NewAuthError(statusCode int, body []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Code:       ErrCodeAuth,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Retryable:  false,
		Body:       body,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(body []byte) *Error {
	return &Error{
		StatusCode: 404,
		Code:       ErrCodeNotFound,
		Message:    "HTTP 404",
		Retryable:  false,
		Body:       body,
	}
}

// NewRateLimitError creates a rate-limit error.
func NewRateLimitError(body []byte) *Error {
	return &Error{
		StatusCode: 429,
		Code:       ErrCodeRateLimit,
		Message:    "HTTP 429",
		Retryable:  true,
		Body:       body,
	}
}

// NewServerError creates a server error.
func NewServerError(statusCode int, body []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Code:       ErrCodeServer,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Retryable:  true,
		Body:       body,
	}
}

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == 401 || statusCode == 403:
		return NewAuthError(statusCode, body)
	case statusCode == 404:
		return NewNotFoundError(body)
	case statusCode == 429:
		return NewRateLimitError(body)
	case statusCode >= 500:
		return NewServerError(statusCode, body)
	default:
		return &Error{
			StatusCode: statusCode,
			Code:       ErrCodeHTTP,
			Message:    fmt.Sprintf("HTTP %d", statusCode),
			Retryable:  statusCode == 408,
			Body:       body,
		}
	}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsInvalidArgument checks if an error is a request build error.
func IsInvalidArgument(err error) bool { return hasCode(err, ErrCodeInvalidArgument) }

// IsOutOfRange checks if an error reports a resource without scheme or base URL.
func IsOutOfRange(err error) bool { return hasCode(err, ErrCodeOutOfRange) }

// IsInvalidURI checks if an error is a URL parse failure.
func IsInvalidURI(err error) bool { return hasCode(err, ErrCodeInvalidURI) }

// IsSerialization checks if an error is a request body serialization failure.
func IsSerialization(err error) bool { return hasCode(err, ErrCodeSerialization) }

// IsDeserialization checks if an error is a response decode failure.
func IsDeserialization(err error) bool {
	var de *DeserializationError
	return errors.As(err, &de) || hasCode(err, ErrCodeDeserialization)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsAborted checks if an error is a caller cancellation.
func IsAborted(err error) bool { return hasCode(err, ErrCodeAborted) }

// IsTransport checks if an error is a connection error.
func IsTransport(err error) bool { return hasCode(err, ErrCodeTransport) }

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool { return hasCode(err, ErrCodeAuth) }

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsRateLimit checks if an error is a rate-limit error.
func IsRateLimit(err error) bool { return hasCode(err, ErrCodeRateLimit) }

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
