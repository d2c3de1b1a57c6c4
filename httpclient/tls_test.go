package httpclient

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/restkit/internal/tlstest"
)

func TestTLSConfig_Build(t *testing.T) {
	certs := tlstest.Generate(t)
	invalid := tlstest.WriteInvalidPEM(t, "bad.pem")

	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantNil bool
		wantErr string
		check   func(*testing.T, *tls.Config)
	}{
		{name: "nil", cfg: nil, wantNil: true},
		{name: "empty", cfg: &TLSConfig{}, wantNil: true},
		{
			name: "skip verify",
			cfg:  &TLSConfig{SkipVerify: true},
			check: func(t *testing.T, c *tls.Config) {
				if !c.InsecureSkipVerify || c.MinVersion != tls.VersionTLS12 {
					t.Errorf("InsecureSkipVerify = %v, MinVersion = %x", c.InsecureSkipVerify, c.MinVersion)
				}
			},
		},
		{
			name: "tls 1.3 with server name",
			cfg:  &TLSConfig{MinVersion: "1.3", ServerName: "api.internal"},
			check: func(t *testing.T, c *tls.Config) {
				if c.MinVersion != tls.VersionTLS13 || c.ServerName != "api.internal" {
					t.Errorf("MinVersion = %x, ServerName = %q", c.MinVersion, c.ServerName)
				}
			},
		},
		{
			name: "ca and client cert",
			cfg:  &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile},
			check: func(t *testing.T, c *tls.Config) {
				if c.RootCAs == nil || len(c.Certificates) != 1 {
					t.Errorf("RootCAs = %v, Certificates = %d", c.RootCAs, len(c.Certificates))
				}
			},
		},
		{name: "missing ca", cfg: &TLSConfig{CAFile: "/nonexistent/ca.pem"}, wantErr: "failed to read CA file"},
		{name: "invalid ca", cfg: &TLSConfig{CAFile: invalid}, wantErr: "failed to parse CA certificate"},
		{name: "invalid client cert", cfg: &TLSConfig{CertFile: invalid, KeyFile: certs.KeyFile}, wantErr: "failed to load client certificate"},
		{name: "bad version", cfg: &TLSConfig{MinVersion: "1.1"}, wantErr: "unsupported min_version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.cfg.Build()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Build() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if tt.wantNil {
				if cfg != nil {
					t.Errorf("Build() = %v, want nil", cfg)
				}
				return
			}
			tt.check(t, cfg)
		})
	}
}

func TestClient_MutualTLS(t *testing.T) {
	certs := tlstest.Generate(t)
	srv := certs.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.TLS.PeerCertificates[0].Subject.CommonName)
	}), true)

	c := newTestClient(t, Options{
		BaseURL: srv.URL,
		TLS:     &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile},
	})
	resp, err := c.Execute(context.Background(), NewRequest(http.MethodGet, ""))
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsSuccessful() || resp.Content == "" {
		t.Fatalf("status = %v %d, exception = %v", resp.ResponseStatus, resp.StatusCode, resp.ErrorException)
	}

	// Without a client certificate the handshake is rejected.
	c = newTestClient(t, Options{BaseURL: srv.URL, TLS: &TLSConfig{CAFile: certs.CAFile}})
	resp, _ = c.Execute(context.Background(), NewRequest(http.MethodGet, ""))
	if resp.ResponseStatus != ResponseStatusError || !IsTransport(resp.ErrorException) {
		t.Errorf("status = %v, exception = %v", resp.ResponseStatus, resp.ErrorException)
	}

	// Unknown CA.
	c = newTestClient(t, Options{BaseURL: srv.URL})
	resp, _ = c.Execute(context.Background(), NewRequest(http.MethodGet, ""))
	if resp.ResponseStatus != ResponseStatusError {
		t.Errorf("status = %v, want error for untrusted server", resp.ResponseStatus)
	}
}

func TestNew_InvalidTLSFiles(t *testing.T) {
	if _, err := New(Options{TLS: &TLSConfig{CAFile: "/nonexistent/ca.pem"}}); err == nil {
		t.Error("New() should fail when the CA file is missing")
	}
}
