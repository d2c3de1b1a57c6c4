package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// Transport sends a prepared request. Implementations must honor ctx
// cancellation and must leave the response body unread.
type Transport interface {
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f(ctx, req)
}

// HTTPTransport is the default Transport backed by an *http.Client that
// is shared by every execution of a Client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport builds the default transport: a cloned
// http.DefaultTransport with the configured TLS settings, gzip/deflate/zstd
// decoding, a public-suffix aware cookie jar and a redirect policy.
func NewHTTPTransport(opts Options) (*HTTPTransport, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DisableCompression = true

	if opts.TLS != nil {
		tlsCfg, err := opts.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			base.TLSClientConfig = tlsCfg
		}
	}

	var rt http.RoundTripper = base
	if !opts.DisableDecompression {
		rt = &decompressTransport{next: base}
	}

	client := &http.Client{
		Transport:     rt,
		CheckRedirect: redirectPolicy(opts.DisableRedirects, opts.MaxRedirects),
	}

	if !opts.DisableCookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		client.Jar = jar
	}

	return &HTTPTransport{client: client}, nil
}

func redirectPolicy(disabled bool, maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if disabled {
			return http.ErrUseLastResponse
		}
		if len(via) > maxRedirects {
			return fmt.Errorf("httpclient: stopped after %d redirects", maxRedirects)
		}
		return nil
	}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return t.client.Do(req.WithContext(ctx))
}

// Jar returns the cookie jar, or nil when cookies are disabled.
func (t *HTTPTransport) Jar() http.CookieJar {
	return t.client.Jar
}

// CloseIdleConnections closes idle keep-alive connections.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

// HTTPClient returns the underlying *http.Client for advanced use cases.
func (t *HTTPTransport) HTTPClient() *http.Client {
	return t.client
}
