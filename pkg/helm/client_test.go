package helm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/crd"
	"github.com/k8s-schemas/crdcat/pkg/helm"
	"github.com/k8s-schemas/crdcat/pkg/helmtest"
	"github.com/k8s-schemas/crdcat/pkg/paths"
)

func TestClientPull(t *testing.T) {
	t.Parallel()

	repo := helmtest.NewRepo(t, helmtest.Chart{
		Name:    "widget-chart",
		Version: "0.1.0",
		Files: map[string]string{
			"widget-chart/Chart.yaml":               testChartYAML,
			"widget-chart/values.yaml":              testValuesYAML,
			"widget-chart/crds/widgets.yaml":        testWidgetCRD,
			"widget-chart/templates/gadgets.yaml":   testGadgetCRDTemplate,
			"widget-chart/templates/configmap.yaml": testConfigMapTemplate,
		},
	})

	c, err := helm.NewClient(paths.NewRandomizedTempPaths(t.TempDir()))
	require.NoError(t, err)

	pc, err := c.Pull(t.Context(), "widget-chart", repo.URL(), "0.1.0")
	require.NoError(t, err)

	manifest, err := pc.GetCRDFiles(t.Context(), map[string]any{"group": "templated.example.io"})
	require.NoError(t, err)

	crds, err := crd.FromData(manifest)
	require.NoError(t, err)
	require.Len(t, crds, 2)

	names := make([]string, 0, len(crds))
	for _, obj := range crds {
		names = append(names, obj.GetName())
	}

	assert.ElementsMatch(t, []string{"widgets.example.io", "gadgets.templated.example.io"}, names)

	// A second pull of the same (repo, chart, version) is served from the
	// archive cache; the repository does not need to be reachable anymore.
	repo.Close()

	cached, err := c.Pull(t.Context(), "widget-chart", repo.URL(), "0.1.0")
	require.NoError(t, err)

	manifest, err = cached.GetCRDFiles(t.Context(), nil)
	require.NoError(t, err)

	crds, err = crd.FromData(manifest)
	require.NoError(t, err)
	assert.Len(t, crds, 2)
}

func TestClientPullUnknownVersion(t *testing.T) {
	t.Parallel()

	repo := helmtest.NewRepo(t)

	c, err := helm.NewClient(paths.NewRandomizedTempPaths(t.TempDir()))
	require.NoError(t, err)

	_, err = c.Pull(t.Context(), "widget-chart", repo.URL(), "9.9.9")
	require.Error(t, err)
}
