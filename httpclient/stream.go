package httpclient

import (
	"context"
	"io"
	"mime"
	"sync"

	"github.com/kbukum/restkit/httpclient/sse"
	"github.com/kbukum/restkit/observability"
)

// maxErrorBody bounds how much of a failed streaming response is buffered
// into the returned error.
const maxErrorBody = 1 << 20

// StreamResponse is a response whose body is read on demand. The caller
// must Close it. The request timeout, if any, keeps running while the body
// is read.
type StreamResponse struct {
	// Response carries the status line and headers. RawBytes and Content
	// are empty.
	*Response
	// Body is the response body.
	Body io.ReadCloser

	ctx       context.Context
	cancel    context.CancelFunc
	op        *observability.Operation
	closeOnce sync.Once
}

// Read reads from the body.
func (s *StreamResponse) Read(p []byte) (int, error) {
	return s.Body.Read(p)
}

// IsEventStream reports a text/event-stream response.
func (s *StreamResponse) IsEventStream() bool {
	mt, _, err := mime.ParseMediaType(s.ContentType)
	return err == nil && mt == "text/event-stream"
}

// Events returns a server-sent events reader over the body. Closing the
// reader closes the stream.
func (s *StreamResponse) Events() sse.Reader {
	return sse.NewReader(s)
}

// Close closes the body and releases the request context.
func (s *StreamResponse) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.Body.Close()
		s.cancel()
		s.op.End(s.ctx, s.ResponseStatus.String(), s.StatusCode, nil)
	})
	return err
}

// DownloadStream sends req and returns the response without reading its
// body. Every failure, including a status code of 400 or above, is
// returned as an error.
func (c *Client) DownloadStream(ctx context.Context, req *Request) (*StreamResponse, error) {
	if req == nil {
		return nil, NewInvalidArgumentError("request is nil")
	}
	method := req.method()
	ctx, op := c.telemetry.Start(ctx, method, "")
	log := c.log.WithContext(ctx)

	httpReq, err := c.prepare(ctx, req, method, log)
	if err != nil {
		op.End(ctx, ResponseStatusNone.String(), 0, err)
		return nil, err
	}
	op.SetURL(httpReq.URL.String(), httpReq.URL.Host)

	sendCtx, cancel := c.sendContext(ctx, req)
	resp, hres := c.send(ctx, sendCtx, req, httpReq, log)
	if hres == nil {
		cancel()
		op.End(ctx, resp.ResponseStatus.String(), 0, resp.ErrorException)
		return nil, resp.ErrorException
	}
	fillResponse(resp, hres)
	resp.ResponseStatus = ResponseStatusCompleted

	if hres.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(hres.Body, maxErrorBody))
		_ = hres.Body.Close()
		cancel()
		err := ClassifyStatusCode(hres.StatusCode, body)
		op.End(ctx, resp.ResponseStatus.String(), resp.StatusCode, err)
		return nil, err
	}

	return &StreamResponse{
		Response: resp,
		Body:     hres.Body,
		ctx:      ctx,
		cancel:   cancel,
		op:       op,
	}, nil
}

// DownloadData sends req and returns the response body. Every failure,
// including a non-2xx status code, is returned as an error.
func (c *Client) DownloadData(ctx context.Context, req *Request) ([]byte, error) {
	resp, err := c.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := resp.ThrowIfError(); err != nil {
		return nil, err
	}
	return resp.RawBytes, nil
}
