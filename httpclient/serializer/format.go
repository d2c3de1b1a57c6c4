package serializer

import (
	"strings"
)

// DataFormat identifies a serialization format.
type DataFormat int

const (
	// DataFormatNone means no format was declared.
	DataFormatNone DataFormat = iota
	// DataFormatJSON is application/json.
	DataFormatJSON
	// DataFormatXML is application/xml.
	DataFormatXML
	// DataFormatYAML is application/yaml.
	DataFormatYAML
)

// String returns the format name.
func (f DataFormat) String() string {
	switch f {
	case DataFormatNone:
		return "none"
	case DataFormatJSON:
		return "json"
	case DataFormatXML:
		return "xml"
	case DataFormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseDataFormat parses a format name as produced by String.
func ParseDataFormat(s string) (DataFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DataFormatNone, true
	case "json":
		return DataFormatJSON, true
	case "xml":
		return DataFormatXML, true
	case "yaml", "yml":
		return DataFormatYAML, true
	default:
		return DataFormatNone, false
	}
}

// Content types used by the built-in codecs.
const (
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
	ContentTypeYAML = "application/yaml"
)

// Accepted content types advertised by the built-in codecs.
var (
	JSONAccept = []string{ContentTypeJSON, "text/json", "text/x-json", "text/javascript", "*+json"}
	XMLAccept  = []string{ContentTypeXML, "text/xml", "*+xml"}
	YAMLAccept = []string{ContentTypeYAML, "application/x-yaml", "text/yaml", "text/x-yaml", "*+yaml"}
)

// MediaType returns the lowercased media type of a Content-Type value
// without parameters.
func MediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// MatchContentType reports whether contentType is accepted by any entry of
// accepted. Entries are exact media types, structured syntax suffix
// wildcards like "*+json", or "*" which accepts anything.
func MatchContentType(accepted []string, contentType string) bool {
	mt := MediaType(contentType)
	if mt == "" {
		return false
	}
	suffix := ""
	if i := strings.LastIndexByte(mt, '+'); i >= 0 {
		suffix = mt[i:]
	}
	for _, a := range accepted {
		a = strings.ToLower(a)
		switch {
		case a == "*":
			return true
		case a == mt:
			return true
		case strings.HasPrefix(a, "*+") && suffix != "" && a[1:] == suffix:
			return true
		}
	}
	return false
}

// Sniff guesses a data format from the first non-whitespace byte of body:
// '<' is XML, '{' or '[' is JSON.
func Sniff(body []byte) DataFormat {
	body = trimBOM(body)
	for _, b := range body {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '<':
			return DataFormatXML
		case '{', '[':
			return DataFormatJSON
		default:
			return DataFormatNone
		}
	}
	return DataFormatNone
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
