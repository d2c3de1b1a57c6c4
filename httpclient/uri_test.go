package httpclient

import (
	"net/http"
	"strings"
	"testing"
)

func TestBuildURI(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		method  string
		build   func() *Request
		want    string
		wantErr func(error) bool
	}{
		{
			name:  "base and resource",
			base:  "http://example.com",
			build: func() *Request { return NewRequest(http.MethodGet, "/resource") },
			want:  "http://example.com/resource",
		},
		{
			name:  "empty resource adds trailing slash",
			base:  "http://example.com",
			build: func() *Request { return NewRequest(http.MethodGet, "") },
			want:  "http://example.com/",
		},
		{
			name:  "empty resource keeps base path",
			base:  "http://example.com/api",
			build: func() *Request { return NewRequest(http.MethodGet, "") },
			want:  "http://example.com/api",
		},
		{
			name:  "base path without trailing slash",
			base:  "http://example.com/api/v1",
			build: func() *Request { return NewRequest(http.MethodGet, "users") },
			want:  "http://example.com/api/v1/users",
		},
		{
			name: "segments in base and resource",
			base: "http://example.com/{foo}",
			build: func() *Request {
				return NewRequest(http.MethodGet, "resource/{baz}").
					AddURLSegment("foo", "bar").
					AddURLSegment("baz", "bat")
			},
			want: "http://example.com/bar/resource/bat",
		},
		{
			name: "segment repeated",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "{id}/copy/{id}").AddURLSegment("id", 7)
			},
			want: "http://example.com/7/copy/7",
		},
		{
			name: "segment encoded",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "files/{name}").AddURLSegment("name", "a b/c")
			},
			want: "http://example.com/files/a%20b%2Fc",
		},
		{
			name: "segment encoded next to literal needing escapes",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "my files/{name}").AddURLSegment("name", "a/b")
			},
			want: "http://example.com/my%20files/a%2Fb",
		},
		{
			name: "segment encoded in base path with space",
			base: "http://example.com/my api/{v}",
			build: func() *Request {
				return NewRequest(http.MethodGet, "{id}").
					AddURLSegment("v", "1/2").
					AddURLSegment("id", "x")
			},
			want: "http://example.com/my%20api/1%2F2/x",
		},
		{
			name: "unfilled token kept escaped",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "items/{id}/{seg}").AddURLSegment("seg", "c%d")
			},
			want: "http://example.com/items/%7Bid%7D/c%25d",
		},
		{
			name: "segment raw",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "files/{path}").AddURLSegmentRaw("path", "dir/file")
			},
			want: "http://example.com/files/dir/file",
		},
		{
			name: "duplicate query names keep order",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "search").
					AddQueryParameter("type", "STAT").
					AddQueryParameter("type", "PICT")
			},
			want: "http://example.com/search?type=STAT&type=PICT",
		},
		{
			name: "embedded query combined with added query",
			build: func() *Request {
				return NewRequest(http.MethodGet, "http://example.com/resource?param1=value1").
					AddQueryParameter("param2", "value2")
			},
			want: "http://example.com/resource?param1=value1&param2=value2",
		},
		{
			name: "literal query on resource field",
			base: "http://example.com",
			build: func() *Request {
				r := NewRequest(http.MethodGet, "")
				r.Resource = "resource?param1=value1"
				return r.AddQueryParameter("param2", "value2")
			},
			want: "http://example.com/resource?param1=value1&param2=value2",
		},
		{
			name: "bare question mark on resource",
			base: "http://example.com",
			build: func() *Request {
				r := NewRequest(http.MethodGet, "")
				r.Resource = "resource?"
				return r.AddQueryParameter("p", "v")
			},
			want: "http://example.com/resource?p=v",
		},
		{
			name: "query values encoded",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "q").AddQueryParameter("text", "a b&c=d/é")
			},
			want: "http://example.com/q?text=a%20b%26c%3Dd%2F%C3%A9",
		},
		{
			name: "raw query value",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "q").AddQueryParameterRaw("filter", "a,b|c")
			},
			want: "http://example.com/q?filter=a,b|c",
		},
		{
			name: "nil query value emits name",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "q").AddQueryParameter("flag", nil)
			},
			want: "http://example.com/q?flag",
		},
		{
			name: "typed nil query value emits name",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "q").AddQueryParameter("flag", (*int)(nil))
			},
			want: "http://example.com/q?flag",
		},
		{
			name: "GetOrPost goes to query for GET",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodGet, "q").AddFormParameter("page", 2)
			},
			want: "http://example.com/q?page=2",
		},
		{
			name: "GetOrPost stays out of query for POST",
			base: "http://example.com",
			build: func() *Request {
				return NewRequest(http.MethodPost, "q").AddFormParameter("page", 2)
			},
			want: "http://example.com/q",
		},
		{
			name:  "absolute resource without base",
			build: func() *Request { return NewRequest(http.MethodGet, "https://api.example.com/v1/items") },
			want:  "https://api.example.com/v1/items",
		},
		{
			name:    "no base and no scheme",
			build:   func() *Request { return NewRequest(http.MethodGet, "/resource") },
			wantErr: IsOutOfRange,
		},
		{
			name:    "no base and scheme-like but not absolute",
			build:   func() *Request { return NewRequest(http.MethodGet, "httpfoo") },
			wantErr: IsOutOfRange,
		},
		{
			name:    "malformed absolute resource",
			build:   func() *Request { return NewRequest(http.MethodGet, "http://[::1") },
			wantErr: IsInvalidURI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, Options{BaseURL: tt.base})
			u, err := c.BuildURI(tt.build())
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("BuildURI() error = %v, want classified error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildURI() error = %v", err)
			}
			if got := u.String(); got != tt.want {
				t.Errorf("BuildURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildURI_NullSegment(t *testing.T) {
	c := newTestClient(t, Options{BaseURL: "http://example.com"})
	req := NewRequest(http.MethodGet, "{a}/{b}/{c}").
		AddURLSegment("a", nil).
		AddURLSegment("b", "ok").
		AddURLSegment("c", nil)

	_, err := c.BuildURI(req)
	if !IsInvalidArgument(err) {
		t.Fatalf("BuildURI() error = %v, want invalid argument", err)
	}
	if !strings.Contains(err.Error(), "a, c") {
		t.Errorf("error %q does not name the null segments", err)
	}
}

func TestBuildURI_TypedNilSegment(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"pointer", (*int)(nil)},
		{"slice", []string(nil)},
		{"map", map[string]string(nil)},
		{"byte slice", []byte(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, Options{BaseURL: "http://example.com"})
			_, err := c.BuildURI(NewRequest(http.MethodGet, "items/{id}").AddURLSegment("id", tt.value))
			if !IsInvalidArgument(err) {
				t.Fatalf("BuildURI() error = %v, want invalid argument", err)
			}
			if !strings.Contains(err.Error(), "id") {
				t.Errorf("error %q does not name the segment", err)
			}
		})
	}
}

func TestBuildURI_TypedNilDefaultSegment(t *testing.T) {
	c := newTestClient(t, Options{BaseURL: "http://example.com"})
	if err := c.AddDefaultURLSegment("tenant", (*string)(nil)); err != nil {
		t.Fatal(err)
	}
	_, err := c.BuildURI(NewRequest(http.MethodGet, "{tenant}/items"))
	if !IsInvalidArgument(err) || !strings.Contains(err.Error(), "tenant") {
		t.Fatalf("BuildURI() error = %v, want invalid argument naming tenant", err)
	}
}

func TestBuildURI_Defaults(t *testing.T) {
	tests := []struct {
		name          string
		allowMultiple bool
		method        string
		want          string
	}{
		{"request wins over default", false, http.MethodGet, "http://example.com/v2/items?page=1&key=k"},
		{"request wins for POST too", false, http.MethodPost, "http://example.com/v2/items?page=1&key=k"},
		{"allow multiple keeps both", true, http.MethodGet, "http://example.com/v2/items?page=1&page=9&key=k"},
		{"allow multiple same for PUT", true, http.MethodPut, "http://example.com/v2/items?page=1&page=9&key=k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, Options{
				BaseURL: "http://example.com/{version}",
				AllowMultipleDefaultParametersWithSameName: tt.allowMultiple,
			})
			for _, err := range []error{
				c.AddDefaultURLSegment("version", "v1"),
				c.AddDefaultQueryParameter("page", 9),
				c.AddDefaultQueryParameter("key", "k"),
			} {
				if err != nil {
					t.Fatal(err)
				}
			}
			req := NewRequest(tt.method, "items").
				AddURLSegment("version", "v2").
				AddQueryParameter("page", 1)

			u, err := c.BuildURI(req)
			if err != nil {
				t.Fatalf("BuildURI() error = %v", err)
			}
			if got := u.String(); got != tt.want {
				t.Errorf("BuildURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildURI_RecordedBuildError(t *testing.T) {
	c := newTestClient(t, Options{BaseURL: "http://example.com"})
	req := NewRequest(http.MethodGet, "x").AddHeader("Bad Header", "v")
	if _, err := c.BuildURI(req); !IsInvalidArgument(err) {
		t.Fatalf("BuildURI() error = %v, want invalid argument", err)
	}
}
