package serializer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
)

// XML is the XML codec backed by encoding/xml.
type XML struct {
	rootElement string
	namespace   string
}

// NewXML returns an XML codec.
func NewXML() Codec { return &XML{} }

func (c *XML) ContentType() string { return ContentTypeXML }

func (c *XML) AcceptedContentTypes() []string { return XMLAccept }

// SupportsContentType accepts the XML media types and any +xml suffix.
func (c *XML) SupportsContentType(contentType string) bool {
	return MatchContentType(XMLAccept, contentType)
}

// SetRootElement makes Deserialize decode the first element with this
// local name, at any depth.
func (c *XML) SetRootElement(name string) { c.rootElement = name }

// SetNamespace sets the namespace of the serialized root element and
// restricts root element matching on decode.
func (c *XML) SetNamespace(ns string) { c.namespace = ns }

func (c *XML) Serialize(v any) ([]byte, error) {
	if c.namespace == "" {
		return xml.Marshal(v)
	}
	data, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	// Re-encode with the namespace applied to the root element.
	dec := xml.NewDecoder(bytes.NewReader(data))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				t.Name.Space = c.namespace
				t.Attr = slices.DeleteFunc(slices.Clone(t.Attr), func(a xml.Attr) bool {
					return a.Name.Space == "" && a.Name.Local == "xmlns"
				})
				tok = t
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				t.Name.Space = c.namespace
				tok = t
			}
		}
		if err := enc.EncodeToken(tok); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *XML) Deserialize(data []byte, v any) error {
	if c.rootElement == "" {
		return xml.Unmarshal(data, v)
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("serializer: root element %q not found", c.rootElement)
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != c.rootElement {
			continue
		}
		if c.namespace != "" && se.Name.Space != c.namespace {
			continue
		}
		return dec.DecodeElement(v, &se)
	}
}
