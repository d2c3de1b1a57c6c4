package httpclient

import (
	"context"
	"net/http"
	"time"
)

// RequestOption configures a request built by the typed helpers.
type RequestOption func(*Request)

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.AddHeader(key, value)
	}
}

// WithQueryParam adds a query parameter to the request.
func WithQueryParam(key string, value any) RequestOption {
	return func(r *Request) {
		r.AddQueryParameter(key, value)
	}
}

// WithURLSegment sets a {name} value in the resource.
func WithURLSegment(name string, value any) RequestOption {
	return func(r *Request) {
		r.AddURLSegment(name, value)
	}
}

// WithRequestAuth overrides authentication for the request.
func WithRequestAuth(auth Authenticator) RequestOption {
	return func(r *Request) {
		r.SetAuthenticator(auth)
	}
}

// WithTimeout overrides the client timeout for the request.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		r.SetTimeout(d)
	}
}

// Get performs a GET request and decodes the response into type T.
func Get[T any](c *Client, ctx context.Context, resource string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodGet, resource, nil, opts...)
}

// Post performs a POST request with a JSON body and decodes the response into type T.
func Post[T any](c *Client, ctx context.Context, resource string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPost, resource, body, opts...)
}

// Put performs a PUT request with a JSON body and decodes the response into type T.
func Put[T any](c *Client, ctx context.Context, resource string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPut, resource, body, opts...)
}

// Patch performs a PATCH request with a JSON body and decodes the response into type T.
func Patch[T any](c *Client, ctx context.Context, resource string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPatch, resource, body, opts...)
}

// Delete performs a DELETE request and decodes the response into type T.
func Delete[T any](c *Client, ctx context.Context, resource string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodDelete, resource, nil, opts...)
}

// doTyped executes a typed request. Transport failures, decode failures and
// non-2xx statuses are returned as errors; for a status error the response
// is returned too, with the error body decoded when possible.
func doTyped[T any](c *Client, ctx context.Context, method, resource string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	req := NewRequest(method, resource)
	if body != nil {
		req.AddJSONBody(body)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := ExecuteAs[T](ctx, c, req)
	if err != nil {
		return resp, err
	}
	if resp.ErrorException != nil {
		return nil, resp.ErrorException
	}
	if !resp.IsSuccessStatusCode() {
		return resp, ClassifyStatusCode(resp.StatusCode, resp.RawBytes)
	}
	return resp, nil
}
