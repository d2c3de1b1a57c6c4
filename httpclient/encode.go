package httpclient

import (
	"net/url"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoder percent-encodes a query or URL segment component whose text is
// first converted to bytes with enc.
type Encoder func(s string, enc encoding.Encoding) string

// DefaultQueryEncoder encodes every byte outside the RFC 3986 unreserved
// set. Spaces become %20.
func DefaultQueryEncoder(s string, enc encoding.Encoding) string {
	return escapeBytes(encodeText(s, enc), false)
}

// DefaultSegmentEncoder encodes a URL segment value as UTF-8, escaping
// every byte outside the RFC 3986 unreserved set, so '/' becomes %2F.
func DefaultSegmentEncoder(s string, _ encoding.Encoding) string {
	return EscapeDataString(s)
}

// FormEncoder encodes application/x-www-form-urlencoded components.
// Spaces become '+'.
func FormEncoder(s string, enc encoding.Encoding) string {
	return escapeBytes(encodeText(s, enc), true)
}

// EscapeDataString percent-encodes the UTF-8 bytes of s except the RFC 3986
// unreserved characters.
func EscapeDataString(s string) string {
	return escapeBytes([]byte(s), false)
}

// URLEncode is EscapeDataString. Input of any length is supported.
func URLEncode(s string) string {
	return EscapeDataString(s)
}

// URLDecode reverses URLEncode. '+' is left as is.
func URLDecode(s string) (string, error) {
	return url.PathUnescape(s)
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}

func escapeBytes(b []byte, spacePlus bool) string {
	n := 0
	for _, c := range b {
		if !isUnreserved(c) && !(spacePlus && c == ' ') {
			n++
		}
	}
	if n == 0 {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b) + 2*n)
	for _, c := range b {
		switch {
		case isUnreserved(c):
			sb.WriteByte(c)
		case spacePlus && c == ' ':
			sb.WriteByte('+')
		default:
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&15])
		}
	}
	return sb.String()
}

// encodeText converts s to bytes in enc, replacing characters enc cannot
// represent.
func encodeText(s string, enc encoding.Encoding) []byte {
	if enc == nil || enc == unicode.UTF8 {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).String(s)
	if err != nil {
		return []byte(s)
	}
	return []byte(out)
}
