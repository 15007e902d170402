package schema

import "fmt"

// copiedKeys are the openAPIV3Schema keys carried into the normalized schema.
// Everything else in the version schema is replaced by the envelope.
var copiedKeys = []string{"properties", "required", "additionalProperties"}

// Normalize converts the openAPIV3Schema of a single CRD version into a
// catalog [Schema]. The envelope ($schema, $id, title, description, type) is
// always rebuilt from gvk; properties, required, and additionalProperties are
// copied from the version schema with vendor extensions stripped. apiVersion
// and kind enum properties are injected when the version schema does not
// declare them itself. A zero prov leaves the schema without provenance
// metadata.
func Normalize(gvk GVK, openAPISchema map[string]any, prov Provenance) Schema {
	kindLower := gvk.KindLower()

	s := Schema{
		"$schema":     MetaSchemaURI,
		"$id":         gvk.ID(),
		"title":       gvk.Kind,
		"description": fmt.Sprintf("%s is the Schema for the %ss API", gvk.Kind, kindLower),
		"type":        "object",
	}

	if !prov.IsZero() {
		s[MetadataKey] = prov.toMap()
	}

	for _, key := range copiedKeys {
		if v, ok := openAPISchema[key]; ok {
			s[key] = Strip(v)
		}
	}

	props, ok := s["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
		s["properties"] = props
	}

	if _, ok := props["apiVersion"]; !ok {
		props["apiVersion"] = map[string]any{
			"type":        "string",
			"description": "APIVersion defines the versioned schema of this representation of an object.",
			"enum":        []any{gvk.APIVersion()},
		}
	}

	if _, ok := props["kind"]; !ok {
		props["kind"] = map[string]any{
			"type":        "string",
			"description": "Kind is a string value representing the REST resource this object represents.",
			"enum":        []any{gvk.Kind},
		}
	}

	return s
}
