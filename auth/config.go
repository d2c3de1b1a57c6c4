package auth

import (
	"errors"
	"fmt"

	"github.com/kbukum/restkit/auth/jwt"
	"github.com/kbukum/restkit/auth/oauth2"
	"github.com/kbukum/restkit/httpclient"
)

// Config selects a token-based authenticator from configuration. At most
// one sub-config may be set. Sub-configs are pointers so unused methods
// are nil and skip validation.
type Config struct {
	// JWT signs a bearer token locally.
	JWT *jwt.Config `yaml:"jwt" mapstructure:"jwt"`

	// OAuth2 obtains tokens with the client credentials grant.
	OAuth2 *oauth2.Config `yaml:"oauth2" mapstructure:"oauth2"`
}

// ApplyDefaults sets sensible defaults for non-nil sub-configurations.
func (c *Config) ApplyDefaults() {
	if c.JWT != nil {
		c.JWT.ApplyDefaults()
	}
}

// Validate checks the non-nil sub-configuration.
func (c *Config) Validate() error {
	if c.JWT != nil && c.OAuth2 != nil {
		return errors.New("auth: jwt and oauth2 are mutually exclusive")
	}
	if c.JWT != nil {
		if err := c.JWT.Validate(); err != nil {
			return fmt.Errorf("auth.jwt: %w", err)
		}
	}
	if c.OAuth2 != nil {
		if err := c.OAuth2.Validate(); err != nil {
			return fmt.Errorf("auth.oauth2: %w", err)
		}
	}
	return nil
}

// Build returns the configured authenticator, or nil when none is set.
func (c *Config) Build() (httpclient.Authenticator, error) {
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch {
	case c.JWT != nil:
		a, err := jwt.New(*c.JWT)
		if err != nil {
			return nil, err
		}
		return a, nil
	case c.OAuth2 != nil:
		a, err := oauth2.NewClientCredentials(*c.OAuth2)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, nil
	}
}

// Describe returns a human-readable one-liner for logs.
// Example: "jwt(HS256) ttl=5m0s"
func (c *Config) Describe() string {
	switch {
	case c.JWT != nil:
		return fmt.Sprintf("jwt(%s) ttl=%s", c.JWT.Method, c.JWT.TTL)
	case c.OAuth2 != nil:
		return fmt.Sprintf("oauth2(client_credentials) client=%s", c.OAuth2.ClientID)
	default:
		return "none"
	}
}
