package httpclient

import (
	"net/http"
	"net/url"
)

// ResponseStatus describes how the transport round trip ended. It says
// nothing about the HTTP status code: a 500 reply is still Completed.
type ResponseStatus int

const (
	// ResponseStatusNone means the request was never sent.
	ResponseStatusNone ResponseStatus = iota
	// ResponseStatusCompleted means a response was received.
	ResponseStatusCompleted
	// ResponseStatusError means the transport failed, or the body failed
	// to decode with FailOnDeserializationError set.
	ResponseStatusError
	// ResponseStatusTimedOut means the request timeout elapsed.
	ResponseStatusTimedOut
	// ResponseStatusAborted means the caller context was canceled.
	ResponseStatusAborted
)

// String returns the status name.
func (s ResponseStatus) String() string {
	switch s {
	case ResponseStatusNone:
		return "none"
	case ResponseStatusCompleted:
		return "completed"
	case ResponseStatusError:
		return "error"
	case ResponseStatusTimedOut:
		return "timed_out"
	case ResponseStatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Response is the outcome of one execution.
type Response struct {
	// Request is the request that produced this response.
	Request *Request

	StatusCode        int
	StatusDescription string
	Headers           http.Header
	Cookies           []*http.Cookie

	// RawBytes is the response body after transport decompression.
	RawBytes []byte
	// Content is RawBytes decoded with the response charset.
	Content string

	ContentType     string
	ContentLength   int64
	ContentEncoding string
	ResponseURI     *url.URL
	Server          string
	ProtocolVersion string

	ResponseStatus ResponseStatus
	// ErrorMessage and ErrorException describe a transport or decode
	// failure.
	ErrorMessage   string
	ErrorException error
}

// IsSuccessStatusCode reports a 2xx status code.
func (r *Response) IsSuccessStatusCode() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsSuccessful reports a 2xx status code on a completed round trip.
func (r *Response) IsSuccessful() bool {
	return r.IsSuccessStatusCode() && r.ResponseStatus == ResponseStatusCompleted
}

// Header returns the first value of the named response header.
func (r *Response) Header(name string) string {
	return r.Headers.Get(name)
}

// ThrowIfError returns the recorded failure, or a classified status error
// for a non-success status code. It returns nil for a successful response.
func (r *Response) ThrowIfError() error {
	if r.ErrorException != nil {
		return r.ErrorException
	}
	if r.ResponseStatus == ResponseStatusCompleted && !r.IsSuccessStatusCode() {
		if err := ClassifyStatusCode(r.StatusCode, r.RawBytes); err != nil {
			return err
		}
	}
	return nil
}

func (r *Response) setError(status ResponseStatus, err error) {
	r.ResponseStatus = status
	r.ErrorException = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// TypedResponse is a Response with its decoded body.
type TypedResponse[T any] struct {
	*Response
	// Data is the decoded body. It is the zero value when no deserializer
	// matched or decoding failed.
	Data T
}
