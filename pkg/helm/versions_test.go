package helm_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/helm"
	"github.com/k8s-schemas/crdcat/pkg/paths"
)

const testRepoIndex = `apiVersion: v1
entries:
  widget-chart:
    - name: widget-chart
      version: 1.0.0
      urls:
        - https://charts.example.com/widget-chart-1.0.0.tgz
    - name: widget-chart
      version: 1.1.0
      urls:
        - https://charts.example.com/widget-chart-1.1.0.tgz
    - urls:
        - https://charts.example.com/mystery.tgz
`

func TestClientListVersions(t *testing.T) {
	t.Parallel()

	hits := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.yaml" {
			http.NotFound(w, r)

			return
		}

		hits++

		_, _ = io.WriteString(w, testRepoIndex)
	}))
	t.Cleanup(srv.Close)

	c, err := helm.NewClient(paths.NewRandomizedTempPaths(t.TempDir()))
	require.NoError(t, err)

	// The entry without metadata is skipped rather than failing the listing.
	versions, err := c.ListVersions(t.Context(), "widget-chart", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, versions)

	// Unknown charts resolve to zero versions, not an error.
	unknown, err := c.ListVersions(t.Context(), "no-such-chart", srv.URL)
	require.NoError(t, err)
	assert.Empty(t, unknown)

	// The index is fetched once per repository URL and served from the
	// cache afterwards, even once the upstream is gone.
	srv.Close()

	versions, err = c.ListVersions(t.Context(), "widget-chart", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, versions)

	assert.Equal(t, 1, hits)
}

func TestClientListVersionsIndexUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c, err := helm.NewClient(paths.NewRandomizedTempPaths(t.TempDir()))
	require.NoError(t, err)

	_, err = c.ListVersions(t.Context(), "widget-chart", srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, helm.ErrIndexUnavailable)
}
