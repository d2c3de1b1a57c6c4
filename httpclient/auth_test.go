package httpclient

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"testing"
)

func TestAuthConfig_Authenticate(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		query  string
		want   string
	}{
		{"bearer", BearerAuth("my-token"), "Authorization", "", "Bearer my-token"},
		{"basic", BasicAuth("user", "pass"), "Authorization", "", "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))},
		{"api key", APIKeyAuth("secret"), "X-API-Key", "", "secret"},
		{"api key custom header", APIKeyAuthHeader("secret", "X-Custom-Key"), "X-Custom-Key", "", "secret"},
		{"api key query", APIKeyAuthQuery("secret", "api_key"), "", "api_key", "secret"},
		{"custom", CustomAuth(func(r *Request) { r.AddHeader("X-Custom", "value") }), "X-Custom", "", "value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(http.MethodGet, "x")
			if err := tt.auth.Authenticate(context.Background(), nil, req); err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			name, typ := tt.header, ParameterHeader
			if tt.query != "" {
				name, typ = tt.query, ParameterQuery
			}
			p, ok := req.params.Find(name, typ)
			if !ok {
				t.Fatalf("%s %q not added", typ, name)
			}
			if p.Value != tt.want {
				t.Errorf("value = %v, want %q", p.Value, tt.want)
			}
		})
	}
}

func TestAuthConfig_DoesNotDuplicateAuthorization(t *testing.T) {
	for _, name := range []string{"Authorization", "authorization", "AUTHORIZATION"} {
		t.Run(name, func(t *testing.T) {
			req := NewRequest(http.MethodGet, "x").AddHeader(name, "Token caller")
			for range 2 {
				if err := BearerAuth("tok").Authenticate(context.Background(), nil, req); err != nil {
					t.Fatal(err)
				}
			}
			headers := req.params.OfType(ParameterHeader)
			if len(headers) != 1 || headers[0].Value != "Token caller" {
				t.Errorf("headers = %v, want only the caller header", headers)
			}
		})
	}
}

func TestAuthConfig_KeepsOtherParameters(t *testing.T) {
	req := NewRequest(http.MethodGet, "x").AddHeader("X-Trace", "1").AddQueryParameter("q", "v")
	if err := BasicAuth("u", "p").Authenticate(context.Background(), nil, req); err != nil {
		t.Fatal(err)
	}
	if !req.HasParameter("X-Trace", ParameterHeader) || !req.HasParameter("q", ParameterQuery) {
		t.Error("authenticator removed caller parameters")
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		auth    *AuthConfig
		wantErr bool
	}{
		{"nil", nil, false},
		{"bearer ok", BearerAuth("t"), false},
		{"bearer empty", &AuthConfig{Type: AuthBearer}, true},
		{"basic empty", &AuthConfig{Type: AuthBasic}, true},
		{"api key empty", &AuthConfig{Type: AuthAPIKey}, true},
		{"api key bad location", &AuthConfig{Type: AuthAPIKey, Key: "k", In: "cookie"}, true},
		{"custom nil", &AuthConfig{Type: AuthCustom}, true},
	}
	for _, tt := range tests {
		if err := tt.auth.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestAuthType_Text(t *testing.T) {
	for _, typ := range []AuthType{AuthNone, AuthBearer, AuthBasic, AuthAPIKey, AuthCustom} {
		b, _ := typ.MarshalText()
		var got AuthType
		if err := got.UnmarshalText(b); err != nil || got != typ {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, got, err)
		}
	}
	var bad AuthType
	if err := bad.UnmarshalText([]byte("kerberos")); err == nil {
		t.Error("expected error for unknown auth type")
	}
}

func TestClient_Authenticator(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.Header.Values("Authorization")
		mu.Unlock()
	})
	last := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return got
	}

	t.Run("client authenticator", func(t *testing.T) {
		c := newTestClient(t, Options{BaseURL: srv.URL, Auth: BearerAuth("client")})
		if _, err := c.Execute(context.Background(), NewRequest(http.MethodGet, "/")); err != nil {
			t.Fatal(err)
		}
		if got := last(); len(got) != 1 || got[0] != "Bearer client" {
			t.Errorf("Authorization = %v", got)
		}
	})

	t.Run("caller header wins in any case", func(t *testing.T) {
		c := newTestClient(t, Options{BaseURL: srv.URL, Auth: BearerAuth("client")})
		req := NewRequest(http.MethodGet, "/").AddHeader("authorization", "Bearer caller")
		if _, err := c.Execute(context.Background(), req); err != nil {
			t.Fatal(err)
		}
		if got := last(); len(got) != 1 || got[0] != "Bearer caller" {
			t.Errorf("Authorization = %v", got)
		}
	})

	t.Run("request override", func(t *testing.T) {
		c := newTestClient(t, Options{BaseURL: srv.URL, Auth: BearerAuth("client")})
		req := NewRequest(http.MethodGet, "/").SetAuthenticator(BasicAuth("a", "b"))
		if _, err := c.Execute(context.Background(), req); err != nil {
			t.Fatal(err)
		}
		if got := last(); len(got) != 1 || got[0] != "Basic YTpi" {
			t.Errorf("Authorization = %v", got)
		}
	})

	t.Run("repeated execution", func(t *testing.T) {
		c := newTestClient(t, Options{BaseURL: srv.URL, Auth: BearerAuth("client")})
		req := NewRequest(http.MethodGet, "/")
		for range 3 {
			if _, err := c.Execute(context.Background(), req); err != nil {
				t.Fatal(err)
			}
		}
		if got := last(); len(got) != 1 {
			t.Errorf("Authorization = %v, want a single value", got)
		}
		if req.Attempts() != 3 {
			t.Errorf("Attempts() = %d, want 3", req.Attempts())
		}
	})

	t.Run("failure recorded on response", func(t *testing.T) {
		failing := AuthenticatorFunc(func(context.Context, *Client, *Request) error {
			return errors.New("token endpoint down")
		})
		c := newTestClient(t, Options{BaseURL: srv.URL, Authenticator: failing})
		req := NewRequest(http.MethodGet, "/")
		resp, err := c.Execute(context.Background(), req)
		if err != nil {
			t.Fatalf("Execute() error = %v, want envelope", err)
		}
		if resp.ResponseStatus != ResponseStatusError || !IsAuth(resp.ErrorException) {
			t.Errorf("status = %v, exception = %v", resp.ResponseStatus, resp.ErrorException)
		}
		if req.Attempts() != 0 {
			t.Errorf("Attempts() = %d, want 0", req.Attempts())
		}
	})

	t.Run("failure thrown with ThrowOnAnyError", func(t *testing.T) {
		failing := AuthenticatorFunc(func(context.Context, *Client, *Request) error {
			return errors.New("no credentials")
		})
		c := newTestClient(t, Options{BaseURL: srv.URL, Authenticator: failing, ThrowOnAnyError: true})
		if _, err := c.Execute(context.Background(), NewRequest(http.MethodGet, "/")); !IsAuth(err) {
			t.Errorf("Execute() error = %v, want auth error", err)
		}
	})
}
