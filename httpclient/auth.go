package httpclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

const headerAuthorization = "Authorization"

// Authenticator attaches credentials to a request. It runs once per
// execution, before the request is sent, and may block (for example to
// fetch a token). Implementations must not add a credential the request
// already carries and must leave unrelated parameters alone.
type Authenticator interface {
	Authenticate(ctx context.Context, c *Client, req *Request) error
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, c *Client, req *Request) error

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, c *Client, req *Request) error {
	return f(ctx, c, req)
}

// HasAuthorization reports whether req carries an Authorization header
// under any letter casing.
func HasAuthorization(req *Request) bool {
	return req.HasParameter(headerAuthorization, ParameterHeader)
}

// SetAuthorization adds an Authorization header unless one is present.
func SetAuthorization(req *Request, value string) {
	if HasAuthorization(req) {
		return
	}
	req.AddHeader(headerAuthorization, value)
}

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthAPIKey uses API key authentication (header or query parameter).
	AuthAPIKey
	// AuthCustom uses a custom authentication function.
	AuthCustom
)

var authTypeNames = map[AuthType]string{
	AuthNone:   "none",
	AuthBearer: "bearer",
	AuthBasic:  "basic",
	AuthAPIKey: "api_key",
	AuthCustom: "custom",
}

// String returns the auth type name.
func (t AuthType) String() string {
	if s, ok := authTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t AuthType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AuthType) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for k, v := range authTypeNames {
		if v == name {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("httpclient: unknown auth type %q", name)
}

// AuthConfig configures one of the built-in authenticators.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType `yaml:"type" mapstructure:"type"`
	// Token is the bearer token (AuthBearer).
	Token string `yaml:"token" mapstructure:"token"`
	// Username is the basic auth username (AuthBasic).
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the basic auth password (AuthBasic).
	Password string `yaml:"password" mapstructure:"password"`
	// Key is the API key value (AuthAPIKey).
	Key string `yaml:"key" mapstructure:"key"`
	// In specifies where to place the API key: "header" (default) or "query" (AuthAPIKey).
	In string `yaml:"in" mapstructure:"in"`
	// Name is the header or query parameter name (AuthAPIKey). Defaults to "X-API-Key".
	Name string `yaml:"name" mapstructure:"name"`
	// Apply is a custom function to modify the request (AuthCustom).
	Apply func(*Request) `yaml:"-" mapstructure:"-"`
}

// BearerAuth creates a bearer token authenticator.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic authenticator.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key authenticator sent via the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: "X-API-Key"}
}

// APIKeyAuthHeader creates an API key authenticator with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery creates an API key authenticator sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates an authenticator from a request modifier function.
func CustomAuth(fn func(*Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// Validate checks that the fields required by Type are set.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("httpclient: bearer auth requires a token")
		}
	case AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("httpclient: basic auth requires a username")
		}
	case AuthAPIKey:
		if a.Key == "" {
			return fmt.Errorf("httpclient: api key auth requires a key")
		}
		if a.In != "" && a.In != "header" && a.In != "query" {
			return fmt.Errorf("httpclient: api key location must be header or query (got: %s)", a.In)
		}
	case AuthCustom:
		if a.Apply == nil {
			return fmt.Errorf("httpclient: custom auth requires an apply function")
		}
	}
	return nil
}

// Authenticate implements Authenticator.
func (a *AuthConfig) Authenticate(_ context.Context, _ *Client, req *Request) error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		SetAuthorization(req, "Bearer "+a.Token)
	case AuthBasic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		SetAuthorization(req, "Basic "+cred)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		if a.In == "query" {
			if !req.HasParameter(name, ParameterQuery) {
				req.AddQueryParameter(name, a.Key)
			}
		} else if !req.HasParameter(name, ParameterHeader) {
			req.AddHeader(name, a.Key)
		}
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
	return req.Err()
}
