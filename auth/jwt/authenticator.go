// Package jwt signs short-lived JWT bearer tokens for outgoing requests.
//
// The Authenticator mints a token from its Config, caches it and renews it
// shortly before it expires. Requests that already carry an Authorization
// header are left untouched.
//
//	auth, err := jwt.New(jwt.Config{
//	    Secret:   os.Getenv("SERVICE_SECRET"),
//	    Issuer:   "billing",
//	    Audience: []string{"ledger"},
//	})
//	client, err := httpclient.New(httpclient.Options{
//	    BaseURL:       "https://ledger.internal",
//	    Authenticator: auth,
//	})
package jwt

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/restkit/httpclient"
)

// Authenticator attaches a signed token to every request. It is safe for
// concurrent use.
type Authenticator struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

var _ httpclient.Authenticator = (*Authenticator)(nil)

// New creates an authenticator from cfg.
func New(cfg Config) (*Authenticator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Authenticator{cfg: cfg, now: time.Now}, nil
}

// Authenticate implements httpclient.Authenticator.
func (a *Authenticator) Authenticate(_ context.Context, _ *httpclient.Client, req *httpclient.Request) error {
	if httpclient.HasAuthorization(req) {
		return nil
	}
	token, err := a.Token()
	if err != nil {
		return err
	}
	httpclient.SetAuthorization(req, a.cfg.Scheme+" "+token)
	return nil
}

// Token returns the cached token, minting a new one when it is missing or
// about to expire.
func (a *Authenticator) Token() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.token != "" && now.Before(a.expires.Add(-a.cfg.RefreshBefore)) {
		return a.token, nil
	}
	token, expires, err := a.mint(now)
	if err != nil {
		return "", err
	}
	a.token, a.expires = token, expires
	return token, nil
}

// Invalidate drops the cached token so the next request mints a new one.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

func (a *Authenticator) mint(now time.Time) (string, time.Time, error) {
	expires := now.Add(a.cfg.TTL)

	claims := gojwt.MapClaims{}
	maps.Copy(claims, a.cfg.Claims)
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["exp"] = expires.Unix()
	claims["jti"] = uuid.NewString()
	if a.cfg.Issuer != "" {
		claims["iss"] = a.cfg.Issuer
	}
	if a.cfg.Subject != "" {
		claims["sub"] = a.cfg.Subject
	}
	switch len(a.cfg.Audience) {
	case 0:
	case 1:
		claims["aud"] = a.cfg.Audience[0]
	default:
		claims["aud"] = a.cfg.Audience
	}

	token := gojwt.NewWithClaims(a.cfg.signingMethod(), claims)
	if a.cfg.KeyID != "" {
		token.Header["kid"] = a.cfg.KeyID
	}
	signed, err := token.SignedString(a.cfg.signKey())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, expires, nil
}
