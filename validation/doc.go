// Package validation checks configuration values before they reach the
// HTTP client.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection. Both produce an *Error
// listing every failing field.
//
// # Struct Tag Validation
//
//	type Options struct {
//	    MaxRedirects int `validate:"gte=0"`
//	}
//	err := validation.Validate(opts)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.AbsoluteURL("base_url", raw)
//	err := v.Error()
package validation
