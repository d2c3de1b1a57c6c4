package serializer

import (
	"github.com/goccy/go-yaml"
)

// YAML is the YAML codec backed by goccy/go-yaml. It is not part of the
// default registry.
type YAML struct{}

// NewYAML returns a YAML codec.
func NewYAML() Codec { return &YAML{} }

func (c *YAML) ContentType() string { return ContentTypeYAML }

func (c *YAML) AcceptedContentTypes() []string { return YAMLAccept }

func (c *YAML) SupportsContentType(contentType string) bool {
	return MatchContentType(YAMLAccept, contentType)
}

func (c *YAML) Serialize(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (c *YAML) Deserialize(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
