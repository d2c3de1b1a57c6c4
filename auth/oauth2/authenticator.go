// Package oauth2 authenticates requests with OAuth 2.0 access tokens.
//
// Tokens come from an oauth2.TokenSource or, for service-to-service calls,
// from the client credentials grant. They are cached until they expire.
//
//	auth, err := oauth2.NewClientCredentials(oauth2.Config{
//	    TokenURL:     "https://auth.example.com/oauth/token",
//	    ClientID:     "reports",
//	    ClientSecret: secret,
//	    Scopes:       []string{"reports.read"},
//	})
//	client, err := httpclient.New(httpclient.Options{Authenticator: auth})
package oauth2

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kbukum/restkit/httpclient"
)

// Config configures the client credentials grant.
type Config struct {
	TokenURL     string   `yaml:"token_url" mapstructure:"token_url"`
	ClientID     string   `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string   `yaml:"client_secret" mapstructure:"client_secret"`
	Scopes       []string `yaml:"scopes" mapstructure:"scopes"`

	// EndpointParams are extra form values sent to the token endpoint,
	// for example an "audience".
	EndpointParams map[string][]string `yaml:"endpoint_params" mapstructure:"endpoint_params"`

	// AuthInHeader sends the client credentials with HTTP Basic instead of
	// the request body.
	AuthInHeader bool `yaml:"auth_in_header" mapstructure:"auth_in_header"`

	// HTTPClient is used for token requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client `yaml:"-" mapstructure:"-"`
}

// Validate checks that the grant can be performed.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("oauth2: client_id is required")
	}
	if c.TokenURL == "" {
		return errors.New("oauth2: token_url is required")
	}
	u, err := url.Parse(c.TokenURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("oauth2: token_url %q is not an absolute URL", c.TokenURL)
	}
	return nil
}

// Authenticator adds "<type> <access token>" as the Authorization header.
// It is safe for concurrent use.
type Authenticator struct {
	fetch func(ctx context.Context) (*oauth2.Token, error)

	mu    sync.Mutex
	token *oauth2.Token
}

var _ httpclient.Authenticator = (*Authenticator)(nil)

// New creates an authenticator that takes tokens from ts.
func New(ts oauth2.TokenSource) *Authenticator {
	return &Authenticator{
		fetch: func(context.Context) (*oauth2.Token, error) { return ts.Token() },
	}
}

// NewClientCredentials creates an authenticator that obtains tokens with
// the client credentials grant. Token requests use the context of the
// request being authenticated.
func NewClientCredentials(cfg Config) (*Authenticator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cc := &clientcredentials.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		TokenURL:       cfg.TokenURL,
		Scopes:         cfg.Scopes,
		EndpointParams: url.Values(cfg.EndpointParams),
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	if cfg.AuthInHeader {
		cc.AuthStyle = oauth2.AuthStyleInHeader
	}
	hc := cfg.HTTPClient
	return &Authenticator{
		fetch: func(ctx context.Context) (*oauth2.Token, error) {
			if hc != nil {
				ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
			}
			return cc.Token(ctx)
		},
	}, nil
}

// Authenticate implements httpclient.Authenticator.
func (a *Authenticator) Authenticate(ctx context.Context, _ *httpclient.Client, req *httpclient.Request) error {
	if httpclient.HasAuthorization(req) {
		return nil
	}
	tok, err := a.Token(ctx)
	if err != nil {
		return err
	}
	httpclient.SetAuthorization(req, tok.Type()+" "+tok.AccessToken)
	return nil
}

// Token returns a valid token, fetching a new one when the cached token
// is missing or expired.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token.Valid() {
		return a.token, nil
	}
	tok, err := a.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("oauth2: fetch token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("oauth2: token response has no access token")
	}
	a.token = tok
	return tok, nil
}

// Invalidate drops the cached token, for example after a 401 response.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	a.token = nil
	a.mu.Unlock()
}
