// Package auth builds token authenticators for httpclient from
// configuration.
//
// Subpackages:
//
//   - jwt: signs and caches short-lived JWT bearer tokens
//   - oauth2: fetches and caches OAuth 2.0 access tokens
//
// Usage:
//
//	cfg := auth.Config{OAuth2: &oauth2.Config{
//	    TokenURL: "https://auth.example.com/oauth/token",
//	    ClientID: "reports",
//	}}
//	a, err := cfg.Build()
//	client, err := httpclient.New(httpclient.Options{Authenticator: a})
package auth
