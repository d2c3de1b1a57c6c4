package httpclient

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/restkit/httpclient/serializer"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/validation"
	"github.com/kbukum/restkit/version"
)

const (
	defaultMaxRedirects = 10
	defaultEncoding     = "utf-8"
)

// RateLimitConfig configures the client-side token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	// Burst is the bucket size. Defaults to 1.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// Options configures a Client. The zero value is usable: every request
// resource must then be an absolute URL.
type Options struct {
	// Name identifies the client in logs.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the base every resource is resolved against. It may contain
	// {name} placeholders filled by URL segment parameters.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the default per-request timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent defaults to restkit/<version>.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are default headers sent with every request unless the request
	// sets the same header.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// MaxRedirects caps redirects followed by the default transport.
	// Defaults to 10.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects" validate:"gte=0"`

	DisableRedirects     bool `yaml:"disable_redirects" mapstructure:"disable_redirects"`
	DisableCookies       bool `yaml:"disable_cookies" mapstructure:"disable_cookies"`
	DisableDecompression bool `yaml:"disable_decompression" mapstructure:"disable_decompression"`

	// ThrowOnAnyError makes Execute return transport failures and
	// unsuccessful status codes as errors alongside the response.
	ThrowOnAnyError bool `yaml:"throw_on_any_error" mapstructure:"throw_on_any_error"`
	// FailOnDeserializationError marks the response as ResponseStatusError
	// when the body cannot be decoded.
	FailOnDeserializationError bool `yaml:"fail_on_deserialization_error" mapstructure:"fail_on_deserialization_error"`
	// ThrowOnDeserializationError makes decode failures return a
	// *DeserializationError.
	ThrowOnDeserializationError bool `yaml:"throw_on_deserialization_error" mapstructure:"throw_on_deserialization_error"`

	// AllowMultipleDefaultParametersWithSameName keeps query-like defaults
	// even when the request has a parameter of the same name and type.
	AllowMultipleDefaultParametersWithSameName bool `yaml:"allow_multiple_default_parameters_with_same_name" mapstructure:"allow_multiple_default_parameters_with_same_name"`

	// AllowGetBody permits bodies on GET and HEAD requests.
	AllowGetBody bool `yaml:"allow_get_body" mapstructure:"allow_get_body"`

	// DetectFileContentType sniffs the content type of attached files that
	// do not declare one.
	DetectFileContentType bool `yaml:"detect_file_content_type" mapstructure:"detect_file_content_type"`

	// Encoding is the text encoding for string bodies and query values.
	// Defaults to utf-8.
	Encoding string `yaml:"encoding" mapstructure:"encoding"`

	// RateLimit enables client-side rate limiting. Nil disables it.
	RateLimit *RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// TLS configures the default transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls" validate:"-"`

	// Auth configures a built-in authenticator when Authenticator is nil.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth" validate:"-"`

	QueryEncoder   Encoder              `yaml:"-" mapstructure:"-" validate:"-"`
	SegmentEncoder Encoder              `yaml:"-" mapstructure:"-" validate:"-"`
	Serializers    *serializer.Registry `yaml:"-" mapstructure:"-" validate:"-"`
	Transport      Transport            `yaml:"-" mapstructure:"-" validate:"-"`
	Authenticator  Authenticator        `yaml:"-" mapstructure:"-" validate:"-"`
	Logger         *logger.Logger       `yaml:"-" mapstructure:"-" validate:"-"`
	TracerProvider trace.TracerProvider `yaml:"-" mapstructure:"-" validate:"-"`
	MeterProvider  metric.MeterProvider `yaml:"-" mapstructure:"-" validate:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (o *Options) ApplyDefaults() {
	if o.MaxRedirects == 0 {
		o.MaxRedirects = defaultMaxRedirects
	}
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.Encoding == "" {
		o.Encoding = defaultEncoding
	}
	if o.QueryEncoder == nil {
		o.QueryEncoder = DefaultQueryEncoder
	}
	if o.SegmentEncoder == nil {
		o.SegmentEncoder = DefaultSegmentEncoder
	}
	if o.Serializers == nil {
		o.Serializers = serializer.DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = logger.WithComponent("httpclient")
	}
	if o.RateLimit != nil && o.RateLimit.Burst == 0 {
		o.RateLimit.Burst = 1
	}
}

// Validate checks that the options are valid.
func (o *Options) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(o))
	v.AbsoluteURL("base_url", o.BaseURL)
	if o.Encoding != "" {
		_, err := lookupEncoding(o.Encoding)
		v.Custom("encoding", err == nil, "must be a known text encoding")
	}
	v.Merge("tls", o.TLS.Validate())
	if o.Auth != nil {
		v.Merge("auth", o.Auth.Validate())
	}
	return v.Error()
}
