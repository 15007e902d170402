package helm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
)

// releaseName is the release name charts are rendered under. CRD manifests
// rarely reference it, but templated metadata ends up deterministic.
const releaseName = "release"

// PulledChart represents a Helm chart .tar.gz, or the root directory of a
// Helm chart. It is typically created via [Client.Pull].
type PulledChart struct {
	client *Client
	chart  string
	path   string
}

// Extract will extract the chart (if it is a .tar.gz file), and return the
// path to the extracted chart. An [io.Closer] is also returned, calling
// Close() will clean up the extracted chart. If [PulledChart] references a
// directory, the path to the directory is returned with a no-op closer.
func (c *PulledChart) Extract() (string, io.Closer, error) {
	if dirExists(c.path) {
		return c.path, closeFunc(func() error { return nil }), nil
	}

	tempDest, err := createTempDir(os.TempDir())
	if err != nil {
		return "", nil, fmt.Errorf("create temporary directory: %w", err)
	}

	//nolint:gosec // G304: the path comes from the client's own cache.
	reader, err := os.Open(c.path)
	if err != nil {
		_ = os.RemoveAll(tempDest)

		return "", nil, fmt.Errorf("open chart path %q: %w", c.path, err)
	}

	defer func() { _ = reader.Close() }()

	err = gunzip(tempDest, reader, c.client.MaxExtractSize.Value())
	if err != nil {
		_ = os.RemoveAll(tempDest)

		return "", nil, fmt.Errorf("gunzip chart: %w", err)
	}

	return filepath.Join(tempDest, normalizeChartName(c.chart)), closeFunc(func() error {
		return os.RemoveAll(tempDest)
	}), nil
}

// GetCRDFiles extracts the chart and renders it client-side with CRDs
// included, returning the manifest. The output carries the files under
// crds/ plus any template-rendered documents; callers filter for the kinds
// they need.
func (c *PulledChart) GetCRDFiles(ctx context.Context, values map[string]any) ([]byte, error) {
	chartPath, closer, err := c.Extract()
	if err != nil {
		return nil, fmt.Errorf("extract chart: %w", err)
	}

	defer tryClose(closer)

	manifest, err := c.template(ctx, chartPath, values)
	if err != nil {
		return nil, fmt.Errorf("template chart: %w", err)
	}

	return []byte(manifest), nil
}

func (c *PulledChart) template(ctx context.Context, chartPath string, values map[string]any) (string, error) {
	// Fail open instead of blocking the template.
	kv := &chartutil.KubeVersion{
		Major:   "999",
		Minor:   "999",
		Version: "v999.999.999",
	}

	loadedChart, err := loader.Load(chartPath)
	if err != nil {
		return "", fmt.Errorf("load chart: %w", err)
	}

	// Keeping the schema in the chart causes templating to load remote refs
	// and validate values against them, for the chart and all dependencies.
	removeChartSchemas(loadedChart)

	ta := action.NewInstall(&action.Configuration{
		RegistryClient: c.client.rc,
		Capabilities: &chartutil.Capabilities{
			KubeVersion: *kv,
			APIVersions: chartutil.DefaultVersionSet,
			HelmVersion: chartutil.DefaultCapabilities.HelmVersion,
		},
		Log: func(msg string, kv ...any) {
			slog.Debug(msg, kv...)
		},
	})
	ta.DryRun = true
	ta.DryRunOption = "client"
	ta.ClientOnly = true
	ta.DisableHooks = true
	ta.DisableOpenAPIValidation = true
	ta.ReleaseName = releaseName
	ta.NameTemplate = releaseName
	ta.Namespace = "default"
	ta.KubeVersion = kv
	ta.APIVersions = chartutil.DefaultVersionSet

	// Set both, otherwise the defaults make things weird.
	ta.IncludeCRDs = true
	ta.SkipCRDs = false

	if values == nil {
		values = make(map[string]any)
	}

	release, err := ta.RunWithContext(ctx, loadedChart, values)
	if err != nil {
		return "", fmt.Errorf("run install action: %w", err)
	}

	manifest := release.Manifest

	for _, hook := range release.Hooks {
		if hook == nil {
			continue
		}

		manifest += "\n---\n" + hook.Manifest
	}

	return manifest, nil
}

func removeChartSchemas(c *chart.Chart) {
	c.Schema = nil
	for _, d := range c.Dependencies() {
		removeChartSchemas(d)
	}
}

// Normalize a chart name for file system use, that is, if chart name is
// foo/bar/baz, returns the last component as chart name.
func normalizeChartName(chartName string) string {
	_, nc := path.Split(chartName)
	// We do not want to return the empty string or something else related to
	// filesystem access. Instead, return original string.
	if nc == "" || nc == "." || nc == ".." {
		return chartName
	}

	return nc
}
