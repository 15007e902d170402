package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// MetaSchemaURI is the JSON Schema draft every catalog schema declares.
	MetaSchemaURI = "https://json-schema.org/draft/2020-12/schema"

	// IDBaseURL is the base URL for schema $id values.
	IDBaseURL = "https://k8s-schemas.io"

	// GeneratorName identifies the generator in provenance metadata.
	GeneratorName = "k8s-schemas.io"

	// MetadataKey is the top-level key holding provenance metadata.
	MetadataKey = "x-kubernetes-schema-metadata"
)

// ErrInvalidSchema indicates data that could not be parsed as a JSON schema.
var ErrInvalidSchema = errors.New("invalid schema")

// Schema is a JSON Schema document. Top-level keys that are not part of the
// catalog envelope are preserved on read-modify-write cycles.
type Schema map[string]any

// Decode parses a JSON schema document. Numbers are kept as [json.Number] so
// that re-encoding preserves the original representation.
func Decode(data []byte) (Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var s Schema

	err := dec.Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	return s, nil
}

// Marshal serializes the schema with 2-space indentation and a trailing
// newline. HTML characters in descriptions are not escaped.
func (s Schema) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return buf.Bytes(), nil
}

// ID returns the $id of the schema, or an empty string if unset.
func (s Schema) ID() string {
	v, ok := s["$id"].(string)
	if !ok {
		return ""
	}

	return v
}

// Title returns the title of the schema, or an empty string if unset.
func (s Schema) Title() string {
	v, ok := s["title"].(string)
	if !ok {
		return ""
	}

	return v
}

// SetID replaces the $id of the schema.
func (s Schema) SetID(id string) {
	s["$id"] = id
}

// DeepCopy returns a recursive deep copy of the [Schema].
func (s Schema) DeepCopy() Schema {
	if s == nil {
		return nil
	}

	return Schema(deepCopyMap(s))
}

func deepCopyMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}

	return result
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = deepCopyValue(item)
		}

		return result

	default:
		return v
	}
}

// GVK identifies a schema by API group, version, and kind. Kind keeps its
// original casing; path components lowercase it.
type GVK struct {
	Group   string
	Version string
	Kind    string
}

// APIVersion returns the group/version pair, e.g. "cert-manager.io/v1".
func (g GVK) APIVersion() string {
	return g.Group + "/" + g.Version
}

// KindLower returns the lowercased kind used in file names and $id values.
func (g GVK) KindLower() string {
	return strings.ToLower(g.Kind)
}

// FileName returns the schema file name, e.g. "certificate.json".
func (g GVK) FileName() string {
	return g.KindLower() + ".json"
}

// Path returns the catalog-relative schema path,
// e.g. "cert-manager.io/v1/certificate.json".
func (g GVK) Path() string {
	return g.Group + "/" + g.Version + "/" + g.FileName()
}

// ID returns the canonical $id URL for the schema.
func (g GVK) ID() string {
	return IDBaseURL + "/" + g.Path()
}

// String returns the group/version/Kind triple for logs and errors.
func (g GVK) String() string {
	return g.Group + "/" + g.Version + "/" + g.Kind
}
