package httpclient

import (
	"strings"
	"testing"
	"time"
)

func TestOptions_ApplyDefaults(t *testing.T) {
	var o Options
	o.RateLimit = &RateLimitConfig{RequestsPerSecond: 5}
	o.ApplyDefaults()

	if o.MaxRedirects != defaultMaxRedirects {
		t.Errorf("MaxRedirects = %d", o.MaxRedirects)
	}
	if !strings.HasPrefix(o.UserAgent, "restkit/") {
		t.Errorf("UserAgent = %q", o.UserAgent)
	}
	if o.Encoding != "utf-8" {
		t.Errorf("Encoding = %q", o.Encoding)
	}
	if o.QueryEncoder == nil || o.SegmentEncoder == nil || o.Serializers == nil || o.Logger == nil {
		t.Error("expected encoders, serializers and logger to be set")
	}
	if o.RateLimit.Burst != 1 {
		t.Errorf("Burst = %d, want 1", o.RateLimit.Burst)
	}
	if o.Timeout != 0 {
		t.Errorf("Timeout = %v, want unlimited", o.Timeout)
	}

	o = Options{MaxRedirects: 2, UserAgent: "x/1", Encoding: "latin1"}
	o.ApplyDefaults()
	if o.MaxRedirects != 2 || o.UserAgent != "x/1" || o.Encoding != "latin1" {
		t.Errorf("explicit values overwritten: %+v", o)
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{name: "zero value", opts: Options{}},
		{name: "base url with placeholder", opts: Options{BaseURL: "https://api.example.com/{version}"}},
		{name: "relative base url", opts: Options{BaseURL: "/api"}, wantErr: "base_url: must be an absolute URL"},
		{name: "ftp base url", opts: Options{BaseURL: "ftp://files.example.com"}, wantErr: "base_url: must use http or https"},
		{name: "negative timeout", opts: Options{Timeout: -time.Second}, wantErr: "timeout"},
		{name: "negative redirects", opts: Options{MaxRedirects: -1}, wantErr: "max_redirects"},
		{name: "unknown encoding", opts: Options{Encoding: "klingon"}, wantErr: "encoding: must be a known text encoding"},
		{name: "zero rate", opts: Options{RateLimit: &RateLimitConfig{}}, wantErr: "requests_per_second"},
		{name: "cert without key", opts: Options{TLS: &TLSConfig{CertFile: "c.pem"}}, wantErr: "cert_file and key_file"},
		{name: "bad tls version", opts: Options{TLS: &TLSConfig{MinVersion: "1.0"}}, wantErr: "unsupported min_version"},
		{name: "bearer without token", opts: Options{Auth: &AuthConfig{Type: AuthBearer}}, wantErr: "requires a token"},
		{name: "api key bad location", opts: Options{Auth: &AuthConfig{Type: AuthAPIKey, Key: "k", In: "body"}}, wantErr: "header or query"},
		{
			name:    "errors are collected",
			opts:    Options{BaseURL: "nope", Encoding: "klingon"},
			wantErr: "base_url: must be an absolute URL; encoding",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	if _, err := New(Options{BaseURL: "::"}); err == nil {
		t.Error("New() should reject an invalid base url")
	}
	if _, err := New(Options{Headers: map[string]string{"Bad Header": "x"}}); err == nil {
		t.Error("New() should reject an invalid default header")
	}
}
