package source

import (
	"errors"
	"fmt"
	"strings"

	invopopjsonschema "github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/k8s-schemas/crdcat/pkg/schema"
)

// SchemaFileName is where the reflected config schema is conventionally
// written, next to the sources directory.
const SchemaFileName = "sources.schema.json"

var ErrValidation = errors.New("source validation failed")

// ConfigSchema reflects [Source] into a JSON schema document that editors
// and the validate command can check descriptors against.
func ConfigSchema() ([]byte, error) {
	r := &invopopjsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	js := r.Reflect(&Source{})
	js.ID = invopopjsonschema.ID(schema.IDBaseURL + "/" + SchemaFileName)
	js.Title = "Source"
	js.Description = "A CRD source descriptor."

	data, err := js.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal config schema: %w", err)
	}

	return data, nil
}

// Validator checks source descriptors against the reflected config schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the config schema once for repeated validation.
func NewValidator() (*Validator, error) {
	data, err := ConfigSchema()
	if err != nil {
		return nil, err
	}

	doc, err := schema.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode config schema: %w", err)
	}

	// gojsonschema does not recognize the 2020-12 meta-schema URI; without
	// $schema it accepts the document in its hybrid draft mode.
	delete(doc, "$schema")

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(map[string]any(doc)))
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	return &Validator{schema: compiled}, nil
}

// Validate checks one source descriptor. Violations are joined into a single
// error wrapping [ErrValidation].
func (v *Validator) Validate(src Source) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(src))
	if err != nil {
		return fmt.Errorf("validate source %q: %w", src.Name, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}

	return fmt.Errorf("%w: %s: %s", ErrValidation, src.Name, strings.Join(msgs, "; "))
}
