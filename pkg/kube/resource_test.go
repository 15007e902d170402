package kube_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/k8s-schemas/crdcat/pkg/kube"
)

func TestObject_GetKind(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		obj  kube.Object
		want string
	}{
		"valid kind": {
			obj: kube.Object{
				"kind": "CustomResourceDefinition",
			},
			want: "CustomResourceDefinition",
		},
		"missing kind": {
			obj:  kube.Object{},
			want: "",
		},
		"non-string kind": {
			obj: kube.Object{
				"kind": 42,
			},
			want: "",
		},
		"nil object": {
			obj:  nil,
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.obj.GetKind()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestObject_GetAPIVersion(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		obj  kube.Object
		want string
	}{
		"valid apiVersion": {
			obj: kube.Object{
				"apiVersion": "v1",
			},
			want: "v1",
		},
		"valid apiVersion with group": {
			obj: kube.Object{
				"apiVersion": "apiextensions.k8s.io/v1",
			},
			want: "apiextensions.k8s.io/v1",
		},
		"missing apiVersion": {
			obj:  kube.Object{},
			want: "",
		},
		"nil object": {
			obj:  nil,
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.obj.GetAPIVersion()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestObject_GetName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		obj  kube.Object
		want string
	}{
		"valid name": {
			obj: kube.Object{
				"metadata": map[string]any{
					"name": "certificates.cert-manager.io",
				},
			},
			want: "certificates.cert-manager.io",
		},
		"missing metadata": {
			obj:  kube.Object{},
			want: "",
		},
		"missing name in metadata": {
			obj: kube.Object{
				"metadata": map[string]any{},
			},
			want: "",
		},
		"nil object": {
			obj:  nil,
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.obj.GetName()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestObject_DeepCopy(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		obj kube.Object
	}{
		"simple object": {
			obj: kube.Object{
				"kind":       "CustomResourceDefinition",
				"apiVersion": "apiextensions.k8s.io/v1",
			},
		},
		"nested object": {
			obj: kube.Object{
				"metadata": map[string]any{
					"name": "widgets.example.io",
					"labels": map[string]any{
						"app": "example",
					},
				},
			},
		},
		"with slice": {
			obj: kube.Object{
				"items": []any{"a", "b", "c"},
			},
		},
		"with nested slice": {
			obj: kube.Object{
				"versions": []any{
					map[string]any{"name": "v1"},
					map[string]any{"name": "v1beta1"},
				},
			},
		},
		"nil object": {
			obj: nil,
		},
		"empty object": {
			obj: kube.Object{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.obj.DeepCopy()

			assert.Equal(t, tc.obj, got)

			if tc.obj == nil {
				assert.Nil(t, got)
				return
			}

			// Mutating the copy must not affect the original.
			if metadata, ok := got["metadata"].(map[string]any); ok {
				metadata["modified"] = "true"
				if origMetadata, exists := tc.obj["metadata"].(map[string]any); exists {
					_, hasModified := origMetadata["modified"]
					assert.False(t, hasModified, "Original should not be modified")
				}
			}

			got["new_field"] = "new_value"
			_, exists := tc.obj["new_field"]
			assert.False(t, exists, "Original should not have new field")
		})
	}
}

func TestObject_IsCRD(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		obj  kube.Object
		want bool
	}{
		"valid CRD v1": {
			obj: kube.Object{
				"apiVersion": "apiextensions.k8s.io/v1",
				"kind":       "CustomResourceDefinition",
			},
			want: true,
		},
		"valid CRD v1beta1": {
			obj: kube.Object{
				"apiVersion": "apiextensions.k8s.io/v1beta1",
				"kind":       "CustomResourceDefinition",
			},
			want: true,
		},
		"wrong apiVersion": {
			obj: kube.Object{
				"apiVersion": "v1",
				"kind":       "CustomResourceDefinition",
			},
			want: false,
		},
		"wrong kind": {
			obj: kube.Object{
				"apiVersion": "apiextensions.k8s.io/v1",
				"kind":       "Pod",
			},
			want: false,
		},
		"regular pod": {
			obj: kube.Object{
				"apiVersion": "v1",
				"kind":       "Pod",
			},
			want: false,
		},
		"empty object": {
			obj:  kube.Object{},
			want: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.obj.IsCRD()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromUnstructured(t *testing.T) {
	t.Parallel()

	t.Run("valid object", func(t *testing.T) {
		t.Parallel()

		u := &unstructured.Unstructured{Object: map[string]any{
			"apiVersion": "apiextensions.k8s.io/v1",
			"kind":       "CustomResourceDefinition",
		}}

		obj := kube.FromUnstructured(u)
		assert.True(t, obj.IsCRD())
	})

	t.Run("nil object", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, kube.FromUnstructured(nil))
	})
}
