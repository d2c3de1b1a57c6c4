package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/restkit/httpclient/serializer"
)

// Request describes an outbound HTTP request. Builder methods return the
// request for chaining; the first invalid call is recorded and reported by
// Err and by every execution of the request.
//
// A Request must not be executed concurrently with itself.
type Request struct {
	// Method is the HTTP method. Empty means GET.
	Method string
	// Resource is the path template, relative to the client base URL or
	// absolute. It may contain {name} placeholders.
	Resource string

	params Parameters
	files  []FileParameter

	timeout                 time.Duration
	requestFormat           serializer.DataFormat
	rootElement             string
	xmlNamespace            string
	dateFormat              string
	alwaysMultipartFormData bool
	authenticator           Authenticator
	onBeforeRequest         func(*http.Request) error
	onBeforeDeserialization func(*Response)

	attempts atomic.Int64
	err      error
}

// NewRequest creates a request. A query string embedded in resource is
// split off into query parameters.
func NewRequest(method, resource string) *Request {
	r := &Request{Method: method, Resource: resource}
	if i := strings.IndexByte(resource, '?'); i >= 0 {
		r.Resource = resource[:i]
		r.addEmbeddedQuery(resource[i+1:])
	}
	return r
}

func (r *Request) addEmbeddedQuery(raw string) {
	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}
		name, value, hasValue := strings.Cut(pair, "=")
		dn, errN := url.QueryUnescape(name)
		dv, errV := url.QueryUnescape(value)
		p := Parameter{Name: dn, Type: ParameterQuery, Encode: true}
		if errN != nil || errV != nil {
			p = Parameter{Name: name, Type: ParameterQuery}
			dv = value
		}
		if hasValue {
			p.Value = dv
		}
		r.params.Add(p)
	}
}

// Err returns the first error recorded by a builder method.
func (r *Request) Err() error {
	return r.err
}

// Attempts returns how many times the request reached the sending phase.
func (r *Request) Attempts() int {
	return int(r.attempts.Load())
}

// Parameters returns a copy of the request parameters in order.
func (r *Request) Parameters() []Parameter {
	return r.params.All()
}

// Files returns the attached files.
func (r *Request) Files() []FileParameter {
	return slices.Clone(r.files)
}

// HasParameter reports whether a parameter with the given name and type is
// attached. Header names compare case-insensitively.
func (r *Request) HasParameter(name string, typ ParameterType) bool {
	return r.params.Exists(name, typ)
}

func (r *Request) fail(err error) *Request {
	if r.err == nil {
		r.err = err
	}
	return r
}

func (r *Request) checkParameter(p Parameter) error {
	if err := validateParameter(p); err != nil {
		return err
	}
	if p.Type == ParameterBody && len(r.params.OfType(ParameterBody)) > 0 {
		return NewInvalidArgumentError("request already has a body parameter")
	}
	return nil
}

// validateParameter checks what can be checked about p on its own.
func validateParameter(p Parameter) error {
	switch p.Type {
	case ParameterHeader:
		if !httpguts.ValidHeaderFieldName(p.Name) {
			return NewInvalidArgumentError(fmt.Sprintf("invalid header name %q", p.Name))
		}
		v, err := FormatValue(p.Value)
		if err != nil {
			return NewInvalidArgumentError(err.Error())
		}
		if !httpguts.ValidHeaderFieldValue(v) {
			return NewInvalidArgumentError(fmt.Sprintf("invalid value for header %q", p.Name))
		}
		if strings.EqualFold(p.Name, "Host") && !validHost(v) {
			return NewInvalidArgumentError(fmt.Sprintf("invalid Host header value %q", v))
		}
	case 0:
		return NewInvalidArgumentError(fmt.Sprintf("parameter %q has no type", p.Name))
	}
	return nil
}

func validHost(v string) bool {
	return v != "" && !strings.ContainsAny(v, "/?# ") && httpguts.ValidHostHeader(v)
}

// AddParameter attaches p.
func (r *Request) AddParameter(p Parameter) *Request {
	if err := r.checkParameter(p); err != nil {
		return r.fail(err)
	}
	r.params.Add(p)
	return r
}

// AddOrUpdateParameter replaces any parameter with p's name and type.
func (r *Request) AddOrUpdateParameter(p Parameter) *Request {
	if p.Type == ParameterBody {
		for _, b := range r.params.OfType(ParameterBody) {
			r.params.Remove(b.Name, ParameterBody)
		}
	}
	if err := r.checkParameter(p); err != nil {
		return r.fail(err)
	}
	r.params.AddOrUpdate(p)
	return r
}

// RemoveParameter removes every parameter with the given name and type.
func (r *Request) RemoveParameter(name string, typ ParameterType) *Request {
	r.params.Remove(name, typ)
	return r
}

// AddHeader adds a header.
func (r *Request) AddHeader(name, value string) *Request {
	return r.AddParameter(NewParameter(name, value, ParameterHeader))
}

// AddOrUpdateHeader sets a header, replacing any with the same name.
func (r *Request) AddOrUpdateHeader(name, value string) *Request {
	return r.AddOrUpdateParameter(NewParameter(name, value, ParameterHeader))
}

// AddHeaders adds every header in headers. Names differing only by case
// are rejected.
func (r *Request) AddHeaders(headers map[string]string) *Request {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	slices.Sort(names)
	seen := make(map[string]string, len(names))
	var dups []string
	for _, name := range names {
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			dups = append(dups, prev+"/"+name)
			continue
		}
		seen[key] = name
	}
	if len(dups) > 0 {
		return r.fail(NewInvalidArgumentError("duplicate header names: " + strings.Join(dups, ", ")))
	}
	for _, name := range names {
		r.AddHeader(name, headers[name])
	}
	return r
}

// AddQueryParameter adds an encoded query parameter. Repeated names are
// all sent, in order.
func (r *Request) AddQueryParameter(name string, value any) *Request {
	return r.AddParameter(NewParameter(name, value, ParameterQuery))
}

// AddQueryParameterRaw adds a query parameter that is sent verbatim.
func (r *Request) AddQueryParameterRaw(name string, value any) *Request {
	return r.AddParameter(Parameter{Name: name, Value: value, Type: ParameterQuery})
}

// AddURLSegment sets the value substituted for {name}.
func (r *Request) AddURLSegment(name string, value any) *Request {
	return r.AddOrUpdateParameter(NewParameter(name, value, ParameterURLSegment))
}

// AddURLSegmentRaw sets a {name} value that is substituted verbatim.
func (r *Request) AddURLSegmentRaw(name string, value any) *Request {
	return r.AddOrUpdateParameter(Parameter{Name: name, Value: value, Type: ParameterURLSegment})
}

// AddFormParameter adds a GetOrPost parameter: form data for POST, PUT and
// PATCH, a query parameter otherwise.
func (r *Request) AddFormParameter(name string, value any) *Request {
	return r.AddParameter(NewParameter(name, value, ParameterGetOrPost))
}

// AddCookie adds a cookie to the Cookie header of this request.
func (r *Request) AddCookie(name, value string) *Request {
	c := &http.Cookie{Name: name, Value: value}
	if err := c.Valid(); err != nil {
		return r.fail(NewInvalidArgumentError(err.Error()))
	}
	return r.AddOrUpdateParameter(NewParameter(name, value, ParameterCookie))
}

// AddBody attaches v as the body, serialized with format.
func (r *Request) AddBody(v any, format serializer.DataFormat) *Request {
	return r.AddParameter(Parameter{Type: ParameterBody, Value: v, DataFormat: format})
}

// AddJSONBody attaches v as a JSON body.
func (r *Request) AddJSONBody(v any) *Request {
	return r.AddBody(v, serializer.DataFormatJSON)
}

// AddXMLBody attaches v as an XML body.
func (r *Request) AddXMLBody(v any) *Request {
	return r.AddBody(v, serializer.DataFormatXML)
}

// AddYAMLBody attaches v as a YAML body. The YAML codec must be registered.
func (r *Request) AddYAMLBody(v any) *Request {
	return r.AddBody(v, serializer.DataFormatYAML)
}

// AddStringBody sends s as the body with the given content type, encoded
// with the client text encoding.
func (r *Request) AddStringBody(s, contentType string) *Request {
	return r.AddParameter(Parameter{Type: ParameterBody, Value: s, ContentType: contentType})
}

// AddRawBody sends b unchanged as the body.
func (r *Request) AddRawBody(b []byte, contentType string) *Request {
	return r.AddParameter(Parameter{Type: ParameterBody, Value: b, ContentType: contentType})
}

// AddFile attaches the file at path under the form field name.
func (r *Request) AddFile(name, path string) *Request {
	f, err := NewFileFromPath(name, path)
	if err != nil {
		return r.fail(NewInvalidArgumentError(err.Error()))
	}
	return r.AddFileParameter(f)
}

// AddFileBytes attaches data as a file.
func (r *Request) AddFileBytes(name string, data []byte, fileName, contentType string) *Request {
	return r.AddFileParameter(NewFileFromBytes(name, data, fileName, contentType))
}

// AddFileReader attaches the content of rd as a file. length must be the
// exact byte count, or -1 to send the body chunked.
func (r *Request) AddFileReader(name string, rd io.Reader, length int64, fileName, contentType string) *Request {
	return r.AddFileParameter(NewFileFromReader(name, rd, length, fileName, contentType))
}

// AddFileParameter attaches f.
func (r *Request) AddFileParameter(f FileParameter) *Request {
	if f.Name == "" {
		return r.fail(NewInvalidArgumentError("file parameter has no name"))
	}
	if f.Open == nil {
		return r.fail(NewInvalidArgumentError(fmt.Sprintf("file parameter %q has no content", f.Name)))
	}
	r.files = append(r.files, f)
	return r
}

// SetTimeout overrides the client timeout for this request. Zero keeps the
// client default.
func (r *Request) SetTimeout(d time.Duration) *Request {
	if d < 0 {
		return r.fail(NewInvalidArgumentError("timeout must not be negative"))
	}
	r.timeout = d
	return r
}

// SetRequestFormat declares the format expected back when the response
// content type does not identify one.
func (r *Request) SetRequestFormat(f serializer.DataFormat) *Request {
	r.requestFormat = f
	return r
}

// SetRootElement makes the deserializer start at the named element.
func (r *Request) SetRootElement(name string) *Request {
	r.rootElement = name
	return r
}

// SetXMLNamespace sets the namespace used to serialize and decode XML.
func (r *Request) SetXMLNamespace(ns string) *Request {
	r.xmlNamespace = ns
	return r
}

// SetDateFormat sets the date layout for codecs that support one.
func (r *Request) SetDateFormat(layout string) *Request {
	r.dateFormat = layout
	return r
}

// SetAlwaysMultipartFormData forces a multipart body even without files.
func (r *Request) SetAlwaysMultipartFormData(v bool) *Request {
	r.alwaysMultipartFormData = v
	return r
}

// SetAuthenticator overrides the client authenticator for this request.
func (r *Request) SetAuthenticator(a Authenticator) *Request {
	r.authenticator = a
	return r
}

// OnBeforeRequest registers a hook run on the transport request right
// before it is sent. A returned error aborts the execution.
func (r *Request) OnBeforeRequest(fn func(*http.Request) error) *Request {
	r.onBeforeRequest = fn
	return r
}

// OnBeforeDeserialization registers a hook run on the response before its
// body is decoded.
func (r *Request) OnBeforeDeserialization(fn func(*Response)) *Request {
	r.onBeforeDeserialization = fn
	return r
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

func (r *Request) codecSettings() serializer.Settings {
	return serializer.Settings{
		RootElement: r.rootElement,
		Namespace:   r.xmlNamespace,
		DateFormat:  r.dateFormat,
	}
}
