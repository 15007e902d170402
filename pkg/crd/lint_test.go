package crd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/crd"
	"github.com/k8s-schemas/crdcat/pkg/kube"
	"github.com/k8s-schemas/crdcat/pkg/schema"
)

func TestLint(t *testing.T) {
	t.Parallel()

	t.Run("valid schemas produce no findings", func(t *testing.T) {
		t.Parallel()

		crds, err := crd.FromData([]byte(widgetCRD))
		require.NoError(t, err)

		errs := crd.Lint(t.Context(), crds)
		assert.Empty(t, errs)
	})

	t.Run("invalid type produces a finding", func(t *testing.T) {
		t.Parallel()

		obj := kube.Object{
			"metadata": map[string]any{"name": "widgets.example.io"},
			"spec": map[string]any{
				"group": "example.io",
				"names": map[string]any{"kind": "Widget"},
				"versions": []any{
					map[string]any{
						"name": "v1",
						"schema": map[string]any{
							"openAPIV3Schema": map[string]any{
								"type": "definitely-not-a-type",
							},
						},
					},
				},
			},
		}

		errs := crd.Lint(t.Context(), []kube.Object{obj})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "widgets.example.io")
		assert.Contains(t, errs[0].Error(), "v1")
	})

	t.Run("findings do not block extraction", func(t *testing.T) {
		t.Parallel()

		obj := kube.Object{
			"spec": map[string]any{
				"group": "example.io",
				"names": map[string]any{"kind": "Widget"},
				"versions": []any{
					map[string]any{
						"name": "v1",
						"schema": map[string]any{
							"openAPIV3Schema": map[string]any{
								"type": "definitely-not-a-type",
							},
						},
					},
				},
			},
		}

		errs := crd.Lint(t.Context(), []kube.Object{obj})
		require.NotEmpty(t, errs)

		records := crd.Extract([]kube.Object{obj}, schema.Provenance{})
		assert.Len(t, records, 1)
	})
}
