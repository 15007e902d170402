package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/schema"
)

func TestNormalize_Envelope(t *testing.T) {
	t.Parallel()

	gvk := schema.GVK{Group: "example.io", Version: "v1", Kind: "Widget"}

	versionSchema := map[string]any{
		"type":        "object",
		"description": "upstream description is replaced by the envelope",
		"properties": map[string]any{
			"spec": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"replicas": map[string]any{"type": "integer"},
				},
			},
		},
		"required": []any{"spec"},
	}

	got := schema.Normalize(gvk, versionSchema, schema.Provenance{})

	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", got["$schema"])
	assert.Equal(t, "https://k8s-schemas.io/example.io/v1/widget.json", got["$id"])
	assert.Equal(t, "Widget", got["title"])
	assert.Equal(t, "Widget is the Schema for the widgets API", got["description"])
	assert.Equal(t, "object", got["type"])
	assert.Equal(t, []any{"spec"}, got["required"])

	props, ok := got["properties"].(map[string]any)
	require.True(t, ok)

	spec, ok := props["spec"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"replicas": map[string]any{"type": "integer"},
		},
	}, spec)

	assert.Equal(t, map[string]any{
		"type":        "string",
		"description": "APIVersion defines the versioned schema of this representation of an object.",
		"enum":        []any{"example.io/v1"},
	}, props["apiVersion"])

	assert.Equal(t, map[string]any{
		"type":        "string",
		"description": "Kind is a string value representing the REST resource this object represents.",
		"enum":        []any{"Widget"},
	}, props["kind"])

	_, hasMeta := got[schema.MetadataKey]
	assert.False(t, hasMeta)
}

func TestNormalize_ExistingGVKPropertiesKept(t *testing.T) {
	t.Parallel()

	gvk := schema.GVK{Group: "example.io", Version: "v1", Kind: "Widget"}

	versionSchema := map[string]any{
		"properties": map[string]any{
			"apiVersion": map[string]any{"type": "string", "description": "upstream"},
			"kind":       map[string]any{"type": "string"},
		},
	}

	got := schema.Normalize(gvk, versionSchema, schema.Provenance{})

	props := got["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "description": "upstream"}, props["apiVersion"])
	assert.Equal(t, map[string]any{"type": "string"}, props["kind"])
}

func TestNormalize_EmptyVersionSchema(t *testing.T) {
	t.Parallel()

	gvk := schema.GVK{Group: "example.io", Version: "v1beta1", Kind: "Widget"}

	got := schema.Normalize(gvk, map[string]any{}, schema.Provenance{})

	props, ok := got["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 2)
	assert.Contains(t, props, "apiVersion")
	assert.Contains(t, props, "kind")

	_, hasRequired := got["required"]
	assert.False(t, hasRequired)

	_, hasAdditional := got["additionalProperties"]
	assert.False(t, hasAdditional)
}

func TestNormalize_StripsVendorExtensions(t *testing.T) {
	t.Parallel()

	gvk := schema.GVK{Group: "example.io", Version: "v1", Kind: "Widget"}

	versionSchema := map[string]any{
		"properties": map[string]any{
			"spec": map[string]any{
				"type":                                 "object",
				"x-kubernetes-preserve-unknown-fields": true,
				"properties": map[string]any{
					"port": map[string]any{
						"x-kubernetes-int-or-string": true,
						"anyOf": []any{
							map[string]any{"type": "integer"},
							map[string]any{"type": "string"},
						},
					},
				},
			},
		},
		"additionalProperties": map[string]any{
			"x-kubernetes-validations": []any{map[string]any{"rule": "self > 0"}},
			"type":                     "string",
		},
	}

	got := schema.Normalize(gvk, versionSchema, schema.Provenance{})

	props := got["properties"].(map[string]any)
	spec := props["spec"].(map[string]any)
	assert.NotContains(t, spec, "x-kubernetes-preserve-unknown-fields")

	port := spec["properties"].(map[string]any)["port"].(map[string]any)
	assert.NotContains(t, port, "x-kubernetes-int-or-string")
	assert.Contains(t, port, "anyOf")

	additional := got["additionalProperties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string"}, additional)
}

func TestNormalize_WithProvenance(t *testing.T) {
	t.Parallel()

	gvk := schema.GVK{Group: "example.io", Version: "v1", Kind: "Widget"}
	prov := schema.Provenance{
		SourceName:    "example-operator",
		SourceVersion: "1.2.3",
		ExtractedAt:   "2025-01-01T00:00:00Z",
		Generator:     schema.GeneratorName,
	}

	got := schema.Normalize(gvk, map[string]any{}, prov)

	meta, ok := got[schema.MetadataKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"sourceName":    "example-operator",
		"sourceVersion": "1.2.3",
		"extractedAt":   "2025-01-01T00:00:00Z",
		"generator":     "k8s-schemas.io",
	}, meta)

	readBack, ok := got.Provenance()
	require.True(t, ok)
	assert.Equal(t, prov, readBack)
}
