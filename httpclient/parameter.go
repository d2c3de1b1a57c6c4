package httpclient

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/restkit/httpclient/serializer"
)

// ParameterType identifies where a parameter is placed on the wire.
type ParameterType int

const (
	// ParameterGetOrPost goes to the query string for methods without a form
	// body and to the form body for POST, PUT and PATCH.
	ParameterGetOrPost ParameterType = iota + 1
	// ParameterURLSegment replaces a {name} placeholder in the resource or
	// base URL path.
	ParameterURLSegment
	// ParameterHeader is sent as an HTTP header.
	ParameterHeader
	// ParameterCookie is sent in the Cookie header.
	ParameterCookie
	// ParameterBody is serialized as the request body.
	ParameterBody
	// ParameterQuery always goes to the query string.
	ParameterQuery
	// ParameterQueryWithoutEncode goes to the query string verbatim.
	ParameterQueryWithoutEncode
)

// String returns the parameter type name.
func (t ParameterType) String() string {
	switch t {
	case ParameterGetOrPost:
		return "get_or_post"
	case ParameterURLSegment:
		return "url_segment"
	case ParameterHeader:
		return "header"
	case ParameterCookie:
		return "cookie"
	case ParameterBody:
		return "body"
	case ParameterQuery:
		return "query"
	case ParameterQueryWithoutEncode:
		return "query_without_encode"
	default:
		return "unknown"
	}
}

// queryLike reports whether parameters of this type may end up in the
// query string.
func (t ParameterType) queryLike() bool {
	return t == ParameterQuery || t == ParameterQueryWithoutEncode || t == ParameterGetOrPost
}

// Parameter is a single named value attached to a request or a client.
type Parameter struct {
	Name  string
	Value any
	Type  ParameterType
	// DataFormat selects the serializer for ParameterBody values.
	DataFormat serializer.DataFormat
	// ContentType overrides the serializer content type of a body, or adds a
	// Content-Type to a multipart form part.
	ContentType string
	// Encode controls percent-encoding of query and URL segment values.
	Encode bool
}

// NewParameter creates an encoded parameter.
func NewParameter(name string, value any, typ ParameterType) Parameter {
	return Parameter{Name: name, Value: value, Type: typ, Encode: true}
}

// Matches reports whether the parameter has the given name and type.
// Header names compare case-insensitively.
func (p Parameter) Matches(name string, typ ParameterType) bool {
	if p.Type != typ {
		return false
	}
	if typ == ParameterHeader {
		return strings.EqualFold(p.Name, name)
	}
	return p.Name == name
}

// String returns the parameter as name=value.
func (p Parameter) String() string {
	v, err := FormatValue(p.Value)
	if err != nil {
		v = fmt.Sprintf("%v", p.Value)
	}
	return p.Name + "=" + v
}

// WireFormatter is implemented by values that control their own wire
// representation in headers, query strings, URL segments and forms.
type WireFormatter interface {
	WireString() string
}

// isNil reports whether v is nil or a nil pointer, map, slice, interface,
// func or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// FormatValue converts a parameter value to its locale-independent wire
// form. Floats use the shortest representation with a '.' separator and
// times are RFC 3339. Values of other types must implement WireFormatter,
// encoding.TextMarshaler or fmt.Stringer.
func FormatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case time.Duration:
		return x.String(), nil
	case WireFormatter:
		return x.WireString(), nil
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return x.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "", nil
		}
		return FormatValue(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("httpclient: cannot format %T as a parameter value", v)
	}
}
