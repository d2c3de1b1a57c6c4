package httpclient

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// lookupEncoding resolves a WHATWG encoding label such as "utf-8" or
// "iso-8859-1".
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("httpclient: unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// decodeContent turns a response body into text using the charset of
// contentType, then fallback.
func decodeContent(raw []byte, contentType string, fallback encoding.Encoding) string {
	enc := fallback
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs := params["charset"]; cs != "" {
			if e, err := lookupEncoding(cs); err == nil {
				enc = e
			}
		}
	}
	if enc == nil || enc == unicode.UTF8 {
		return string(raw)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil || !utf8.Valid(out) {
		return string(raw)
	}
	return string(out)
}
