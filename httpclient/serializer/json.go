package serializer

import (
	"fmt"

	"github.com/goccy/go-json"
)

// JSON is the JSON codec backed by goccy/go-json.
type JSON struct {
	rootElement string
}

// NewJSON returns a JSON codec.
func NewJSON() Codec { return &JSON{} }

func (c *JSON) ContentType() string { return ContentTypeJSON }

func (c *JSON) AcceptedContentTypes() []string { return JSONAccept }

// SupportsContentType accepts the JSON media types and any +json suffix.
func (c *JSON) SupportsContentType(contentType string) bool {
	return MatchContentType(JSONAccept, contentType)
}

// SetRootElement makes Deserialize decode the named top-level property.
func (c *JSON) SetRootElement(name string) { c.rootElement = name }

func (c *JSON) Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSON) Deserialize(data []byte, v any) error {
	if c.rootElement == "" {
		return json.Unmarshal(data, v)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	inner, ok := doc[c.rootElement]
	if !ok {
		return fmt.Errorf("serializer: root element %q not found", c.rootElement)
	}
	return json.Unmarshal(inner, v)
}
