package serializer

// Serializer turns a value into a request body.
type Serializer interface {
	ContentType() string
	Serialize(v any) ([]byte, error)
}

// Deserializer decodes a response body into v.
type Deserializer interface {
	Deserialize(data []byte, v any) error
}

// Codec is a serializer and deserializer pair for one data format.
type Codec interface {
	Serializer
	Deserializer
	// AcceptedContentTypes lists the content types advertised in Accept.
	AcceptedContentTypes() []string
	// SupportsContentType reports whether the codec can decode contentType.
	SupportsContentType(contentType string) bool
}

// Factory creates a fresh codec. The registry calls it once per use so
// per-request configuration never leaks across executions.
type Factory func() Codec

// RootElementConfigurer is implemented by codecs that can decode from a
// nested element instead of the document root.
type RootElementConfigurer interface {
	SetRootElement(name string)
}

// NamespaceConfigurer is implemented by codecs that understand namespaces.
type NamespaceConfigurer interface {
	SetNamespace(ns string)
}

// DateFormatConfigurer is implemented by codecs with a configurable
// date layout.
type DateFormatConfigurer interface {
	SetDateFormat(layout string)
}

// Settings carries the optional configuration a request declares for its
// codecs.
type Settings struct {
	RootElement string
	Namespace   string
	DateFormat  string
}

// Configure applies the non-empty settings the codec declares support for.
func Configure(c Codec, s Settings) {
	if s.RootElement != "" {
		if rc, ok := c.(RootElementConfigurer); ok {
			rc.SetRootElement(s.RootElement)
		}
	}
	if s.Namespace != "" {
		if nc, ok := c.(NamespaceConfigurer); ok {
			nc.SetNamespace(s.Namespace)
		}
	}
	if s.DateFormat != "" {
		if dc, ok := c.(DateFormatConfigurer); ok {
			dc.SetDateFormat(s.DateFormat)
		}
	}
}
