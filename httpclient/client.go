package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/time/rate"

	"github.com/kbukum/restkit/httpclient/serializer"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
)

// Client executes Requests against an optional base URL. It is safe for
// concurrent use; its connection pool and cookie jar are shared by every
// execution.
type Client struct {
	opts          Options
	transport     Transport
	serializers   *serializer.Registry
	encoding      encoding.Encoding
	authenticator Authenticator
	limiter       *rate.Limiter
	telemetry     *observability.Telemetry
	log           *logger.Logger

	mu       sync.RWMutex
	defaults Parameters
}

// New creates a client from opts.
func New(opts Options) (*Client, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	transport := opts.Transport
	if transport == nil {
		t, err := NewHTTPTransport(opts)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	telemetry, err := observability.NewTelemetry(opts.TracerProvider, opts.MeterProvider)
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts:          opts,
		transport:     transport,
		serializers:   opts.Serializers,
		encoding:      enc,
		authenticator: opts.Authenticator,
		telemetry:     telemetry,
		log:           opts.Logger,
	}
	if c.authenticator == nil && opts.Auth != nil && opts.Auth.Type != AuthNone {
		c.authenticator = opts.Auth
	}
	if opts.RateLimit != nil {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit.RequestsPerSecond), opts.RateLimit.Burst)
	}

	names := make([]string, 0, len(opts.Headers))
	for name := range opts.Headers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := c.AddDefaultHeader(name, opts.Headers[name]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddDefaultParameter adds a parameter merged into every request that does
// not define one with the same name and type.
func (c *Client) AddDefaultParameter(p Parameter) error {
	if err := validateParameter(p); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.Type == ParameterBody && len(c.defaults.OfType(ParameterBody)) > 0 {
		return NewInvalidArgumentError("client already has a default body parameter")
	}
	c.defaults.Add(p)
	return nil
}

// AddDefaultHeader sets a default header, replacing one with the same name.
func (c *Client) AddDefaultHeader(name, value string) error {
	p := NewParameter(name, value, ParameterHeader)
	if err := validateParameter(p); err != nil {
		return err
	}
	c.mu.Lock()
	c.defaults.AddOrUpdate(p)
	c.mu.Unlock()
	return nil
}

// AddDefaultQueryParameter adds a default query parameter.
func (c *Client) AddDefaultQueryParameter(name string, value any) error {
	return c.AddDefaultParameter(NewParameter(name, value, ParameterQuery))
}

// AddDefaultURLSegment sets a default {name} value.
func (c *Client) AddDefaultURLSegment(name string, value any) error {
	if name == "" {
		return NewInvalidArgumentError("url segment name is empty")
	}
	c.mu.Lock()
	c.defaults.AddOrUpdate(NewParameter(name, value, ParameterURLSegment))
	c.mu.Unlock()
	return nil
}

// RemoveDefaultParameter removes the default parameters with the given name
// and type.
func (c *Client) RemoveDefaultParameter(name string, typ ParameterType) {
	c.mu.Lock()
	c.defaults.Remove(name, typ)
	c.mu.Unlock()
}

// DefaultParameters returns a copy of the default parameters.
func (c *Client) DefaultParameters() []Parameter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaults.All()
}

// Serializers returns the registry used for request bodies and responses.
// Registering a codec affects later executions.
func (c *Client) Serializers() *serializer.Registry {
	return c.serializers
}

// CookieJar returns the cookie jar of the default transport. It is nil when
// cookies are disabled or a custom Transport is used.
func (c *Client) CookieJar() http.CookieJar {
	if t, ok := c.transport.(*HTTPTransport); ok {
		return t.Jar()
	}
	return nil
}

// Options returns the effective client options.
func (c *Client) Options() Options {
	return c.opts
}

// Close releases idle connections held by the transport.
func (c *Client) Close() error {
	if t, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// BuildURI returns the URL req would be sent to.
func (c *Client) BuildURI(req *Request) (*url.URL, error) {
	if err := req.Err(); err != nil {
		return nil, err
	}
	return c.uriBuilder(req.method()).build(req.Resource, c.mergedParameters(req))
}

// Get executes req as a GET request.
func (c *Client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.executeMethod(ctx, http.MethodGet, req)
}

// Post executes req as a POST request.
func (c *Client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.executeMethod(ctx, http.MethodPost, req)
}

// Put executes req as a PUT request.
func (c *Client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.executeMethod(ctx, http.MethodPut, req)
}

// Patch executes req as a PATCH request.
func (c *Client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.executeMethod(ctx, http.MethodPatch, req)
}

// Delete executes req as a DELETE request.
func (c *Client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.executeMethod(ctx, http.MethodDelete, req)
}

// Head executes req as a HEAD request.
func (c *Client) Head(ctx context.Context, req *Request) (*Response, error) {
	return c.executeMethod(ctx, http.MethodHead, req)
}

// OptionsRequest executes req as an OPTIONS request. It is not named
// Options because that returns the client configuration.
func (c *Client) OptionsRequest(ctx context.Context, req *Request) (*Response, error) {
	return c.executeMethod(ctx, http.MethodOptions, req)
}

func (c *Client) executeMethod(ctx context.Context, method string, req *Request) (*Response, error) {
	if req != nil {
		req.Method = method
	}
	return c.Execute(ctx, req)
}

func (c *Client) mergedParameters(req *Request) []Parameter {
	c.mu.RLock()
	defaults := c.defaults.All()
	c.mu.RUnlock()
	return mergeDefaults(req.params.All(), defaults, c.opts.AllowMultipleDefaultParametersWithSameName)
}

func (c *Client) uriBuilder(method string) uriBuilder {
	return uriBuilder{
		base:          c.opts.BaseURL,
		method:        method,
		queryEncoder:  c.opts.QueryEncoder,
		segmentEncode: c.opts.SegmentEncoder,
		encoding:      c.encoding,
	}
}
