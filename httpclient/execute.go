package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/restkit/httpclient/serializer"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
)

// errRequestTimeout is the cancellation cause of the per-request timeout.
var errRequestTimeout = errors.New("request timeout elapsed")

// decodeFunc decodes a response body with the negotiated codec.
type decodeFunc func(codec serializer.Codec, data []byte) error

// Execute sends req and returns the response envelope.
//
// Build failures (bad URL segments, unresolvable URLs, invalid headers, body
// serialization) are always returned as errors. Transport failures,
// timeouts and cancellation are recorded on the Response unless
// ThrowOnAnyError is set. HTTP error statuses are not errors.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	return c.execute(ctx, req, nil)
}

// ExecuteAs sends req and decodes the response body into a T using the
// serializer negotiated from the response content type.
func ExecuteAs[T any](ctx context.Context, c *Client, req *Request) (*TypedResponse[T], error) {
	var data T
	resp, err := c.execute(ctx, req, func(codec serializer.Codec, raw []byte) error {
		var v T
		if err := codec.Deserialize(raw, &v); err != nil {
			return err
		}
		data = v
		return nil
	})
	if resp == nil {
		return nil, err
	}
	return &TypedResponse[T]{Response: resp, Data: data}, err
}

func (c *Client) execute(ctx context.Context, req *Request, decode decodeFunc) (*Response, error) {
	if req == nil {
		return nil, NewInvalidArgumentError("request is nil")
	}
	method := req.method()
	ctx, op := c.telemetry.Start(ctx, method, "")
	log := c.log.WithContext(ctx)

	httpReq, err := c.prepare(ctx, req, method, log)
	if err != nil {
		if !IsAuth(err) {
			op.End(ctx, ResponseStatusNone.String(), 0, err)
			return nil, err
		}
		resp := &Response{Request: req}
		resp.setError(ResponseStatusError, err)
		op.End(ctx, resp.ResponseStatus.String(), 0, err)
		return resp, c.escalate(resp)
	}
	op.SetURL(httpReq.URL.String(), httpReq.URL.Host)

	sendCtx, cancel := c.sendContext(ctx, req)
	defer cancel()

	start := time.Now()
	resp, hres := c.send(ctx, sendCtx, req, httpReq, log)
	if hres != nil {
		c.readResponse(ctx, sendCtx, resp, hres, log)
	}
	if resp.ResponseStatus == ResponseStatusCompleted {
		fields := logger.DurationFields("execute", time.Since(start))
		fields[logger.FieldMethod] = method
		fields[logger.FieldURI] = httpReq.URL.String()
		fields[logger.FieldStatusCode] = resp.StatusCode
		log.Debug("response completed", fields)
		if err := c.deserialize(req, resp, decode, log); err != nil {
			op.End(ctx, resp.ResponseStatus.String(), resp.StatusCode, err)
			return resp, err
		}
	}

	op.End(ctx, resp.ResponseStatus.String(), resp.StatusCode, resp.ErrorException)
	return resp, c.escalate(resp)
}

// prepare runs the building and authenticating phases and returns the
// transport request. Authenticator failures are returned as ErrCodeAuth
// errors; every other error is a build error.
func (c *Client) prepare(ctx context.Context, req *Request, method string, log *logger.Logger) (*http.Request, error) {
	if err := req.Err(); err != nil {
		return nil, err
	}
	builder := c.uriBuilder(method)
	u, err := builder.build(req.Resource, c.mergedParameters(req))
	if err != nil {
		return nil, err
	}
	log.Debug("request built", logger.Fields(logger.FieldMethod, method, logger.FieldURI, u.String()))

	if err := c.authenticate(ctx, req); err != nil {
		log.Warn("authenticator failed", logger.ErrorFields("authenticate", err))
		return nil, err
	}

	// The authenticator may have added parameters.
	params := c.mergedParameters(req)
	u, err = builder.build(req.Resource, params)
	if err != nil {
		return nil, err
	}
	return c.newHTTPRequest(ctx, req, method, u, params)
}

func (c *Client) authenticate(ctx context.Context, req *Request) error {
	auth := req.authenticator
	if auth == nil {
		auth = c.authenticator
	}
	if auth == nil {
		return nil
	}
	err := auth.Authenticate(ctx, c, req)
	if err == nil {
		err = req.Err()
	}
	if err != nil {
		return &Error{Code: ErrCodeAuth, Message: "authenticator: " + err.Error(), Err: err}
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, method string, u *url.URL, params []Parameter) (*http.Request, error) {
	var callerContentType string
	for _, p := range params {
		if p.Matches("Content-Type", ParameterHeader) {
			v, err := FormatValue(p.Value)
			if err != nil {
				return nil, NewInvalidArgumentError(err.Error())
			}
			callerContentType = v
			break
		}
	}

	composer := bodyComposer{
		method:            method,
		serializers:       c.serializers,
		settings:          req.codecSettings(),
		encoding:          c.encoding,
		detectFiles:       c.opts.DetectFileContentType,
		alwaysMultipart:   req.alwaysMultipartFormData,
		callerContentType: callerContentType,
	}
	body, err := composer.compose(params, req.files)
	if err != nil {
		return nil, err
	}
	if body != nil && !c.opts.AllowGetBody && (method == http.MethodGet || method == http.MethodHead) {
		return nil, NewInvalidArgumentError(method + " request cannot carry a body unless AllowGetBody is set")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, NewInvalidURIError(err)
	}

	for _, p := range params {
		switch p.Type {
		case ParameterHeader:
			v, err := FormatValue(p.Value)
			if err != nil {
				return nil, NewInvalidArgumentError(fmt.Sprintf("header %q: %v", p.Name, err))
			}
			switch {
			case strings.EqualFold(p.Name, "Host"):
				httpReq.Host = v
			case body != nil && strings.EqualFold(p.Name, "Content-Type"):
			default:
				httpReq.Header.Add(p.Name, v)
			}
		case ParameterCookie:
			v, err := FormatValue(p.Value)
			if err != nil {
				return nil, NewInvalidArgumentError(fmt.Sprintf("cookie %q: %v", p.Name, err))
			}
			httpReq.AddCookie(&http.Cookie{Name: p.Name, Value: v})
		}
	}

	if httpReq.Header.Get("Accept") == "" {
		if accepted := c.serializers.AcceptedContentTypes(); len(accepted) > 0 {
			httpReq.Header.Set("Accept", strings.Join(accepted, ", "))
		}
	}
	if httpReq.Header.Get("User-Agent") == "" && c.opts.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	}

	if body != nil {
		if err := attachBody(httpReq, body); err != nil {
			return nil, err
		}
	}
	return httpReq, nil
}

func attachBody(httpReq *http.Request, body *requestBody) error {
	httpReq.Header.Set("Content-Type", body.contentType)
	if body.length == 0 {
		httpReq.Body = http.NoBody
		httpReq.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		return nil
	}
	rc, err := body.open()
	if err != nil {
		return NewInvalidArgumentError("open request body: " + err.Error())
	}
	httpReq.Body = rc
	httpReq.GetBody = body.open
	httpReq.ContentLength = body.length
	return nil
}

// sendContext links the request timeout to ctx. The timeout is recorded as
// the cancellation cause so it can be told apart from the caller canceling.
func (c *Client) sendContext(ctx context.Context, req *Request) (context.Context, context.CancelFunc) {
	timeout := req.timeout
	if timeout == 0 {
		timeout = c.opts.Timeout
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeoutCause(ctx, timeout, errRequestTimeout)
}

// send runs the sending phase. It returns the envelope and, when a response
// arrived, the transport response whose body is still unread.
func (c *Client) send(ctx, sendCtx context.Context, req *Request, httpReq *http.Request, log *logger.Logger) (*Response, *http.Response) {
	resp := &Response{Request: req}
	attempt := req.attempts.Add(1)

	fail := func(err error) (*Response, *http.Response) {
		status, classified := classifyTransportError(ctx, sendCtx, err)
		resp.setError(status, classified)
		log.Warn("request failed", logger.Fields(
			logger.FieldMethod, httpReq.Method,
			logger.FieldURI, httpReq.URL.String(),
			logger.FieldStatus, status.String(),
			logger.FieldAttempt, attempt,
			logger.FieldError, err.Error(),
		))
		return resp, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(sendCtx); err != nil {
			if sendCtx.Err() == nil && ctx.Err() == nil {
				// The limiter refuses waits that would outlast the deadline.
				if _, ok := sendCtx.Deadline(); ok {
					resp.setError(ResponseStatusTimedOut, NewTimeoutError(err))
					return resp, nil
				}
			}
			return fail(err)
		}
	}

	if req.onBeforeRequest != nil {
		if err := req.onBeforeRequest(httpReq); err != nil {
			resp.setError(ResponseStatusError, err)
			return resp, nil
		}
	}

	observability.InjectHeaders(ctx, httpReq.Header)

	hres, err := c.transport.Send(sendCtx, httpReq)
	if err != nil {
		return fail(err)
	}
	return resp, hres
}

func classifyTransportError(ctx, sendCtx context.Context, err error) (ResponseStatus, error) {
	switch {
	case errors.Is(context.Cause(sendCtx), errRequestTimeout):
		return ResponseStatusTimedOut, NewTimeoutError(err)
	case ctx.Err() != nil:
		return ResponseStatusAborted, NewAbortedError(err)
	default:
		return ResponseStatusError, NewTransportError(err)
	}
}

// readResponse fills resp from hres and consumes its body.
func (c *Client) readResponse(ctx, sendCtx context.Context, resp *Response, hres *http.Response, log *logger.Logger) {
	defer func() { _ = hres.Body.Close() }()
	fillResponse(resp, hres)

	raw, err := io.ReadAll(hres.Body)
	if err != nil {
		status, classified := classifyTransportError(ctx, sendCtx, err)
		resp.setError(status, classified)
		log.Warn("reading response body failed", logger.Fields(
			logger.FieldStatus, status.String(),
			logger.FieldStatusCode, resp.StatusCode,
			logger.FieldError, err.Error(),
		))
		return
	}
	resp.RawBytes = raw
	resp.Content = decodeContent(raw, resp.ContentType, c.encoding)
	if resp.ContentLength < 0 {
		resp.ContentLength = int64(len(raw))
	}
	resp.ResponseStatus = ResponseStatusCompleted
}

func fillResponse(resp *Response, hres *http.Response) {
	resp.StatusCode = hres.StatusCode
	resp.StatusDescription = strings.TrimSpace(strings.TrimPrefix(hres.Status, strconv.Itoa(hres.StatusCode)))
	resp.Headers = hres.Header
	resp.Cookies = hres.Cookies()
	resp.ContentType = hres.Header.Get("Content-Type")
	resp.ContentLength = hres.ContentLength
	resp.ContentEncoding = hres.Header.Get("Content-Encoding")
	resp.Server = hres.Header.Get("Server")
	resp.ProtocolVersion = hres.Proto
	if hres.Request != nil {
		resp.ResponseURI = hres.Request.URL
	}
}

// deserialize runs content negotiation and decoding. A non-nil return is
// the error to hand to the caller right away.
func (c *Client) deserialize(req *Request, resp *Response, decode decodeFunc, log *logger.Logger) error {
	if req.onBeforeDeserialization != nil {
		req.onBeforeDeserialization(resp)
	}
	if decode == nil || len(resp.RawBytes) == 0 {
		return nil
	}
	codec, ok := c.serializers.SelectForResponse(resp.ContentType, resp.RawBytes, req.requestFormat)
	if !ok {
		return nil
	}
	serializer.Configure(codec, req.codecSettings())
	err := decode(codec, resp.RawBytes)
	if err == nil {
		return nil
	}

	log.Warn("response deserialization failed", logger.Fields(
		logger.FieldStatusCode, resp.StatusCode,
		logger.FieldError, err.Error(),
	))
	resp.ErrorException = NewDeserializationError(err)
	resp.ErrorMessage = err.Error()
	if c.opts.FailOnDeserializationError {
		resp.ResponseStatus = ResponseStatusError
	}
	if c.opts.ThrowOnDeserializationError {
		return &DeserializationError{Response: resp, Err: err}
	}
	return nil
}

// escalate returns the error to report for resp under ThrowOnAnyError.
func (c *Client) escalate(resp *Response) error {
	if !c.opts.ThrowOnAnyError {
		return nil
	}
	if resp.ErrorException != nil {
		return resp.ErrorException
	}
	if resp.StatusCode >= 400 {
		return ClassifyStatusCode(resp.StatusCode, resp.RawBytes)
	}
	return nil
}
