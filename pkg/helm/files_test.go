package helm_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/helm"
	"github.com/k8s-schemas/crdcat/pkg/helmtest"
)

func TestGunzip(t *testing.T) {
	t.Parallel()

	archive := helmtest.Archive(t, map[string]string{
		"widget-chart/Chart.yaml":        "apiVersion: v2\nname: widget-chart\nversion: 0.1.0\n",
		"widget-chart/crds/widgets.yaml": "kind: CustomResourceDefinition\n",
	})

	dst := filepath.Join(t.TempDir(), "extracted")

	err := helm.Gunzip(dst, bytes.NewReader(archive), 0)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dst, "widget-chart", "Chart.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "apiVersion: v2\nname: widget-chart\nversion: 0.1.0\n", string(got))

	got, err = os.ReadFile(filepath.Join(dst, "widget-chart", "crds", "widgets.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "kind: CustomResourceDefinition\n", string(got))
}

func TestGunzip_RejectsPathEscape(t *testing.T) {
	t.Parallel()

	archive := helmtest.Archive(t, map[string]string{
		"../evil.yaml": "kind: ConfigMap\n",
	})

	err := helm.Gunzip(filepath.Join(t.TempDir(), "extracted"), bytes.NewReader(archive), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal filepath in archive")
}

func TestGunzip_SizeLimit(t *testing.T) {
	t.Parallel()

	archive := helmtest.Archive(t, map[string]string{
		"widget-chart/big.yaml": strings.Repeat("x", 4096),
	})

	err := helm.Gunzip(filepath.Join(t.TempDir(), "extracted"), bytes.NewReader(archive), 1024)
	require.Error(t, err)

	var limitErr helm.LimitReaderUnexpectedEOFError

	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, int64(1024), limitErr.MaxSize)
}

func TestGunzip_RelativeDestination(t *testing.T) {
	t.Parallel()

	err := helm.Gunzip("relative/destination", bytes.NewReader(nil), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relative path")
}

func TestInbound(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	tcs := map[string]struct {
		candidate string
		baseDir   string
		want      bool
	}{
		"relative inside": {
			candidate: "charts/widget.yaml",
			baseDir:   base,
			want:      true,
		},
		"absolute inside": {
			candidate: filepath.Join(base, "widget.yaml"),
			baseDir:   base,
			want:      true,
		},
		"escapes via dotdot": {
			candidate: "../widget.yaml",
			baseDir:   base,
			want:      false,
		},
		"absolute outside": {
			candidate: "/etc/passwd",
			baseDir:   base,
			want:      false,
		},
		"relative base rejected": {
			candidate: "widget.yaml",
			baseDir:   "relative/base",
			want:      false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, helm.Inbound(tc.candidate, tc.baseDir))
		})
	}
}

func TestNormalizeChartName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		chart string
		want  string
	}{
		"plain name": {
			chart: "podinfo",
			want:  "podinfo",
		},
		"nested path": {
			chart: "stable/prometheus-operator-crds",
			want:  "prometheus-operator-crds",
		},
		"trailing slash preserved": {
			chart: "widget/",
			want:  "widget/",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, helm.NormalizeChartName(tc.chart))
		})
	}
}
