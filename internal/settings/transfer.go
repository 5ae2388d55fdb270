package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding used by Export and Import.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml, or yml.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported settings format %q", value)
	}
}

// Encode renders doc in format.
func Encode(doc Settings, format Format) ([]byte, error) {
	doc.normalize()
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported settings format %q", format)
	}
}

// Decode parses data in format, filling omitted fields with defaults.
func Decode(data []byte, format Format) (Settings, error) {
	switch format {
	case FormatYAML:
		doc := Default()
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Settings{}, fmt.Errorf("%w: parse settings YAML: %v", ErrMalformed, err)
		}
		doc.normalize()
		return doc, nil
	case FormatJSON, "":
		return decodeJSON(data)
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", format)
	}
}

// Export renders the persisted document.
func (s *Store) Export(format Format) ([]byte, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return Encode(doc, format)
}

// Import replaces the persisted document with data.
func (s *Store) Import(ctx context.Context, data []byte, format Format) (SaveResult, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return SaveResult{}, err
	}
	return s.Save(ctx, doc)
}
