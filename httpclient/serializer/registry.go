package serializer

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrNoSerializer is returned when no codec is registered for a format.
var ErrNoSerializer = errors.New("serializer: no serializer registered")

type record struct {
	format   DataFormat
	accepted []string
	supports func(string) bool
	factory  Factory
}

// Registry maps data formats to codec factories.
type Registry struct {
	mu      sync.RWMutex
	records []record
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with the JSON and XML codecs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DataFormatJSON, NewJSON)
	r.Register(DataFormatXML, NewXML)
	return r
}

// Register installs factory for format, replacing any previous record for
// the same format. The new record is scanned after the existing ones.
func (r *Registry) Register(format DataFormat, factory Factory) {
	probe := factory()
	rec := record{
		format:   format,
		accepted: slices.Clone(probe.AcceptedContentTypes()),
		supports: probe.SupportsContentType,
		factory:  factory,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = slices.DeleteFunc(r.records, func(x record) bool { return x.format == format })
	r.records = append(r.records, rec)
}

// Unregister removes the record for format.
func (r *Registry) Unregister(format DataFormat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = slices.DeleteFunc(r.records, func(x record) bool { return x.format == format })
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{records: slices.Clone(r.records)}
}

// Formats returns the registered formats in scan order.
func (r *Registry) Formats() []DataFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DataFormat, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.format
	}
	return out
}

// Lookup returns a fresh codec for format.
func (r *Registry) Lookup(format DataFormat) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.format == format {
			return rec.factory(), true
		}
	}
	return nil, false
}

// AcceptedContentTypes returns the union of every record's accepted
// content types, in registration order without duplicates.
func (r *Registry) AcceptedContentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, rec := range r.records {
		for _, ct := range rec.accepted {
			if !slices.Contains(out, ct) {
				out = append(out, ct)
			}
		}
	}
	return out
}

// SelectForResponse picks the codec for a response. A declared content
// type is matched against the records in order. Without a content type the
// format is sniffed from body. If neither resolves, fallback is used.
func (r *Registry) SelectForResponse(contentType string, body []byte, fallback DataFormat) (Codec, bool) {
	if MediaType(contentType) != "" {
		r.mu.RLock()
		for _, rec := range r.records {
			if rec.supports(contentType) {
				r.mu.RUnlock()
				return rec.factory(), true
			}
		}
		r.mu.RUnlock()
	} else if sniffed := Sniff(body); sniffed != DataFormatNone {
		if c, ok := r.Lookup(sniffed); ok {
			return c, true
		}
	}
	if fallback == DataFormatNone {
		return nil, false
	}
	return r.Lookup(fallback)
}

// SelectForRequestBody picks the codec that serializes a request body. A
// codec whose content type equals contentTypeOverride wins; otherwise the
// codec registered for format is used.
func (r *Registry) SelectForRequestBody(format DataFormat, contentTypeOverride string) (Codec, error) {
	if override := MediaType(contentTypeOverride); override != "" {
		r.mu.RLock()
		for _, rec := range r.records {
			c := rec.factory()
			if strings.EqualFold(MediaType(c.ContentType()), override) {
				r.mu.RUnlock()
				return c, nil
			}
		}
		r.mu.RUnlock()
	}
	if c, ok := r.Lookup(format); ok {
		return c, nil
	}
	if contentTypeOverride != "" {
		return nil, fmt.Errorf("%w for format %s or content type %q", ErrNoSerializer, format, contentTypeOverride)
	}
	return nil, fmt.Errorf("%w for format %s", ErrNoSerializer, format)
}
