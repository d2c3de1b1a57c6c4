package httpclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeInvalidArgument, "invalid_argument"},
		{ErrCodeOutOfRange, "out_of_range"},
		{ErrCodeInvalidURI, "invalid_uri"},
		{ErrCodeSerialization, "serialization"},
		{ErrCodeDeserialization, "deserialization"},
		{ErrCodeTransport, "transport"},
		{ErrCodeTimeout, "timeout"},
		{ErrCodeAborted, "aborted"},
		{ErrCodeAuth, "auth"},
		{ErrCodeNotFound, "not_found"},
		{ErrCodeRateLimit, "rate_limit"},
		{ErrCodeHTTP, "http"},
		{ErrCodeServer, "server"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestError_Error(t *testing.T) {
	e := &Error{StatusCode: 404, Code: ErrCodeNotFound, Message: "HTTP 404"}
	want := "httpclient: not_found (HTTP 404): HTTP 404"
	if got := e.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	e2 := &Error{Code: ErrCodeTransport, Message: "connection refused"}
	want2 := "httpclient: transport: connection refused"
	if got := e2.Error(); got != want2 {
		t.Errorf("got %q, want %q", got, want2)
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	outer := NewTransportError(inner)
	if !errors.Is(outer, inner) {
		t.Error("Unwrap did not return inner error")
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		code    int
		wantNil bool
		errCode ErrorCode
		retry   bool
	}{
		{200, true, 0, false},
		{201, true, 0, false},
		{204, true, 0, false},
		{400, false, ErrCodeHTTP, false},
		{401, false, ErrCodeAuth, false},
		{403, false, ErrCodeAuth, false},
		{404, false, ErrCodeNotFound, false},
		{408, false, ErrCodeHTTP, true},
		{409, false, ErrCodeHTTP, false},
		{429, false, ErrCodeRateLimit, true},
		{500, false, ErrCodeServer, true},
		{502, false, ErrCodeServer, true},
		{503, false, ErrCodeServer, true},
	}
	for _, tt := range tests {
		e := ClassifyStatusCode(tt.code, nil)
		if tt.wantNil {
			if e != nil {
				t.Errorf("ClassifyStatusCode(%d): expected nil, got %v", tt.code, e)
			}
			continue
		}
		if e == nil {
			t.Errorf("ClassifyStatusCode(%d): expected error, got nil", tt.code)
			continue
		}
		if e.Code != tt.errCode {
			t.Errorf("ClassifyStatusCode(%d): code = %v, want %v", tt.code, e.Code, tt.errCode)
		}
		if e.Retryable != tt.retry {
			t.Errorf("ClassifyStatusCode(%d): retryable = %v, want %v", tt.code, e.Retryable, tt.retry)
		}
	}
}

func TestIsHelpers(t *testing.T) {
	cause := fmt.Errorf("cause")
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"invalid argument", NewInvalidArgumentError("bad"), IsInvalidArgument},
		{"out of range", NewOutOfRangeError("no scheme"), IsOutOfRange},
		{"invalid uri", NewInvalidURIError(cause), IsInvalidURI},
		{"serialization", NewSerializationError(cause), IsSerialization},
		{"deserialization", NewDeserializationError(cause), IsDeserialization},
		{"deserialization wrapper", &DeserializationError{Err: cause}, IsDeserialization},
		{"transport", NewTransportError(cause), IsTransport},
		{"timeout", NewTimeoutError(cause), IsTimeout},
		{"aborted", NewAbortedError(cause), IsAborted},
		{"auth", NewAuthError(401, nil), IsAuth},
		{"not found", NewNotFoundError(nil), IsNotFound},
		{"rate limit", NewRateLimitError(nil), IsRateLimit},
		{"server", NewServerError(500, nil), IsServerError},
		{"wrapped", fmt.Errorf("outer: %w", NewTimeoutError(cause)), IsTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate did not match %v", tt.err)
			}
			if tt.check(cause) {
				t.Error("predicate matched a plain error")
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	cause := fmt.Errorf("cause")
	for _, err := range []error{NewTimeoutError(cause), NewTransportError(cause), NewServerError(503, nil), NewRateLimitError(nil)} {
		if !IsRetryable(err) {
			t.Errorf("%v should be retryable", err)
		}
	}
	for _, err := range []error{NewAuthError(401, nil), NewAbortedError(cause), NewInvalidArgumentError("x"), cause} {
		if IsRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}
