package httpclient

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
)

// uriBuilder assembles the final request URL from a base URL, a resource
// template and the merged parameter list.
type uriBuilder struct {
	base          string
	method        string
	queryEncoder  Encoder
	segmentEncode Encoder
	encoding      encoding.Encoding
}

// formMethod reports whether GetOrPost parameters go to the body.
func formMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func (b uriBuilder) build(resource string, params []Parameter) (*url.URL, error) {
	base, resource, err := b.substituteSegments(b.base, resource, params)
	if err != nil {
		return nil, err
	}

	if base == "" && !strings.HasPrefix(strings.ToLower(resource), "http") {
		return nil, NewOutOfRangeError("resource must be an absolute URL when the client has no base URL")
	}

	resource = strings.TrimPrefix(resource, "/")

	u, err := b.merge(base, resource)
	if err != nil {
		return nil, err
	}

	q, err := b.query(params)
	if err != nil {
		return nil, err
	}
	if q != "" {
		if u.RawQuery == "" {
			u.RawQuery = q
		} else {
			u.RawQuery += "&" + q
		}
		u.ForceQuery = false
	}
	return u, nil
}

func (b uriBuilder) merge(base, resource string) (*url.URL, error) {
	if base == "" {
		u, err := url.Parse(resource)
		if err != nil {
			return nil, NewInvalidURIError(err)
		}
		if !u.IsAbs() || u.Host == "" {
			return nil, NewOutOfRangeError("resource " + resource + " is not an absolute URL")
		}
		return u, nil
	}

	if resource == "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, NewInvalidURIError(err)
		}
		if u.Path == "" && u.RawPath == "" {
			u.Path = "/"
		}
		return u, nil
	}

	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	bu, err := url.Parse(base)
	if err != nil {
		return nil, NewInvalidURIError(err)
	}
	ru, err := url.Parse(resource)
	if err != nil {
		return nil, NewInvalidURIError(err)
	}
	return bu.ResolveReference(ru), nil
}

// substituteSegments replaces {name} tokens in resource and in the path of
// base. Request parameters come before defaults in params, so the first
// value seen for a name wins.
func (b uriBuilder) substituteSegments(base, resource string, params []Parameter) (string, string, error) {
	prefix, path := splitBasePath(base)
	seen := make(map[string]bool)
	var nulls []string

	for _, p := range params {
		if p.Type != ParameterURLSegment || seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		if isNil(p.Value) {
			nulls = append(nulls, p.Name)
			continue
		}
		v, err := FormatValue(p.Value)
		if err != nil {
			return "", "", NewInvalidArgumentError(err.Error())
		}
		if p.Encode {
			v = b.segmentEncode(v, b.encoding)
		}
		token := "{" + p.Name + "}"
		resource = strings.ReplaceAll(resource, token, v)
		path = strings.ReplaceAll(path, token, v)
	}

	if len(nulls) > 0 {
		return "", "", NewInvalidArgumentError(
			"cannot build uri when url segment parameters have null values: " + strings.Join(nulls, ", "))
	}
	return prefix + escapePathText(path), escapePathText(resource), nil
}

// escapePathText percent-encodes the bytes in the path part of s that may
// not appear unescaped in a URL path. Existing escapes, the query and the
// fragment are left alone. url.Parse drops an escaped path it considers
// invalid and re-escapes the decoded one, which would turn an encoded
// segment value such as %2F back into a separator.
func escapePathText(s string) string {
	end := strings.IndexAny(s, "?#")
	if end < 0 {
		end = len(s)
	}
	path := s[:end]

	n := 0
	for i := 0; i < len(path); i++ {
		if !pathSafe(path[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2*n)
	for i := 0; i < len(path); i++ {
		c := path[i]
		if pathSafe(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	sb.WriteString(s[end:])
	return sb.String()
}

func pathSafe(c byte) bool {
	return isUnreserved(c) || strings.IndexByte("!$&'()*+,;=:@/%[]", c) >= 0
}

// splitBasePath splits a base URL into its scheme and authority, and the
// remainder starting at the path.
func splitBasePath(base string) (string, string) {
	i := strings.Index(base, "://")
	if i < 0 {
		return "", base
	}
	rest := base[i+3:]
	j := strings.IndexAny(rest, "/?#")
	if j < 0 {
		return base, ""
	}
	return base[:i+3+j], rest[j:]
}

func (b uriBuilder) query(params []Parameter) (string, error) {
	types := []ParameterType{ParameterQuery, ParameterQueryWithoutEncode}
	if !formMethod(b.method) {
		types = append(types, ParameterGetOrPost)
	}

	var pairs []string
	for _, p := range params {
		if !slices.Contains(types, p.Type) {
			continue
		}
		pair, err := b.queryPair(p)
		if err != nil {
			return "", err
		}
		pairs = append(pairs, pair)
	}
	return strings.Join(pairs, "&"), nil
}

func (b uriBuilder) queryPair(p Parameter) (string, error) {
	raw := p.Type == ParameterQueryWithoutEncode || !p.Encode
	name := p.Name
	if !raw {
		name = b.queryEncoder(name, b.encoding)
	}
	if isNil(p.Value) {
		return name, nil
	}
	v, err := FormatValue(p.Value)
	if err != nil {
		return "", NewInvalidArgumentError(err.Error())
	}
	if !raw {
		v = b.queryEncoder(v, b.encoding)
	}
	return name + "=" + v, nil
}
