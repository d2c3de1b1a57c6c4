package jwt

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines supported JWT signing algorithms.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
	RS256 SigningMethod = "RS256"
	RS384 SigningMethod = "RS384"
	RS512 SigningMethod = "RS512"
	ES256 SigningMethod = "ES256"
	ES384 SigningMethod = "ES384"
	ES512 SigningMethod = "ES512"
)

// Config configures the token minted for outgoing requests.
type Config struct {
	// Secret is the HMAC signing key (required for HS* methods).
	Secret string `yaml:"secret" mapstructure:"secret"`

	// PrivateKey is the RSA or ECDSA private key (required for RS*/ES* methods).
	PrivateKey any `yaml:"-" mapstructure:"-"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	// KeyID is written to the "kid" header when set.
	KeyID string `yaml:"key_id" mapstructure:"key_id"`

	Issuer   string   `yaml:"issuer" mapstructure:"issuer"`
	Subject  string   `yaml:"subject" mapstructure:"subject"`
	Audience []string `yaml:"audience" mapstructure:"audience"`

	// Claims are merged into every token. Registered claims set by the
	// authenticator take precedence.
	Claims map[string]any `yaml:"claims" mapstructure:"claims"`

	// TTL is the token lifetime (default: 5m).
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// RefreshBefore renews the cached token this long before it expires
	// (default: 30s, capped at half the TTL).
	RefreshBefore time.Duration `yaml:"refresh_before" mapstructure:"refresh_before"`

	// Scheme prefixes the token in the Authorization header (default: Bearer).
	Scheme string `yaml:"scheme" mapstructure:"scheme"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.RefreshBefore == 0 {
		c.RefreshBefore = 30 * time.Second
	}
	if c.RefreshBefore > c.TTL/2 {
		c.RefreshBefore = c.TTL / 2
	}
	if c.Scheme == "" {
		c.Scheme = "Bearer"
	}
}

// Validate checks required fields based on the signing method.
func (c *Config) Validate() error {
	if c.TTL < 0 {
		return errors.New("jwt: ttl must not be negative")
	}
	switch c.Method {
	case HS256, HS384, HS512:
		if c.Secret == "" {
			return errors.New("jwt: secret is required for HMAC signing methods")
		}
	case RS256, RS384, RS512:
		if c.PrivateKey == nil {
			return errors.New("jwt: private key is required for RSA signing methods")
		}
		if _, ok := c.PrivateKey.(*rsa.PrivateKey); !ok {
			return errors.New("jwt: private key must be *rsa.PrivateKey for RSA signing methods")
		}
	case ES256, ES384, ES512:
		if c.PrivateKey == nil {
			return errors.New("jwt: private key is required for ECDSA signing methods")
		}
		if _, ok := c.PrivateKey.(*ecdsa.PrivateKey); !ok {
			return errors.New("jwt: private key must be *ecdsa.PrivateKey for ECDSA signing methods")
		}
	default:
		return errors.New("jwt: unsupported signing method: " + string(c.Method))
	}
	return nil
}

// signingMethod returns the golang-jwt SigningMethod instance.
func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	case RS256:
		return gojwt.SigningMethodRS256
	case RS384:
		return gojwt.SigningMethodRS384
	case RS512:
		return gojwt.SigningMethodRS512
	case ES256:
		return gojwt.SigningMethodES256
	case ES384:
		return gojwt.SigningMethodES384
	case ES512:
		return gojwt.SigningMethodES512
	default:
		return gojwt.SigningMethodHS256
	}
}

// signKey returns the key used for signing tokens.
func (c *Config) signKey() any {
	switch c.Method {
	case HS256, HS384, HS512:
		return []byte(c.Secret)
	default:
		return c.PrivateKey
	}
}
