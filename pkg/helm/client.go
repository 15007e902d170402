package helm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/registry"
	"helm.sh/helm/v3/pkg/repo"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/k8s-schemas/crdcat/pkg/paths"
	"github.com/k8s-schemas/crdcat/pkg/syncs"
)

// DefaultMaxExtractSize bounds the decompressed size of a pulled chart.
const DefaultMaxExtractSize = "10M"

var (
	globalLock = syncs.NewKeyLock()

	// DefaultClient is a [Client] caching charts under the system temporary
	// directory. The cache is keyed by path encoding, so it survives across
	// invocations.
	DefaultClient = MustNewClient(
		paths.NewStaticTempPaths(filepath.Join(os.TempDir(), "crdcat-charts"), paths.NewBase64PathEncoder()),
	)
)

// ChartClient pulls Helm charts and returns the result.
// See [Client] for an implementation.
type ChartClient interface {
	Pull(ctx context.Context, chartName, repoURL, version string) (*PulledChart, error)
	ListVersions(ctx context.Context, chartName, repoURL string) ([]string, error)
}

// Client pulls and caches Helm charts from remote repositories.
// Create instances with [NewClient] or [MustNewClient].
type Client struct {
	Paths          paths.TempPaths
	RepoLock       syncs.KeyLocker
	MaxExtractSize resource.Quantity
	rc             *registry.Client
	helmHome       string

	indexes map[string]*repo.IndexFile
	indexMu sync.RWMutex
}

// NewClient creates a new [Client] storing pulled charts in pc.
func NewClient(pc paths.TempPaths) (*Client, error) {
	rc, err := registry.NewClient(registry.ClientOptEnableCache(true))
	if err != nil {
		return nil, fmt.Errorf("create registry client: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "helm")
	if err != nil {
		return nil, fmt.Errorf("create temporary directory for helm: %w", err)
	}

	return &Client{
		Paths:          pc,
		RepoLock:       globalLock,
		MaxExtractSize: resource.MustParse(DefaultMaxExtractSize),
		rc:             rc,
		helmHome:       tmpDir,
		indexes:        map[string]*repo.IndexFile{},
	}, nil
}

// MustNewClient runs [NewClient] and panics on any errors.
func MustNewClient(pc paths.TempPaths) *Client {
	c, err := NewClient(pc)
	if err != nil {
		panic(err)
	}

	return c
}

// Pull downloads the chart archive and returns a [PulledChart] referencing
// it. Archives are cached in the injected [paths.TempPaths] keyed by
// repository, chart, and version, and subsequent requests reuse the cached
// archive rather than re-pulling the chart.
func (c *Client) Pull(ctx context.Context, chartName, repoURL, version string) (*PulledChart, error) {
	cachePath, err := c.cachedChartPath(chartName, repoURL, version)
	if err != nil {
		return nil, fmt.Errorf("get cached chart path: %w", err)
	}

	c.RepoLock.Lock(cachePath)
	defer c.RepoLock.Unlock(cachePath)

	exists, err := fileExists(cachePath)
	if err != nil {
		return nil, fmt.Errorf("check cached chart path: %w", err)
	}

	if !exists {
		err := c.pullRemoteChart(ctx, chartName, repoURL, version, cachePath)
		if err != nil {
			return nil, fmt.Errorf("pull remote chart: %w", err)
		}
	}

	return &PulledChart{
		client: c,
		chart:  chartName,
		path:   cachePath,
	}, nil
}

func (c *Client) cachedChartPath(chartName, repoURL, version string) (string, error) {
	keyData, err := json.Marshal(
		map[string]string{"url": repoURL, "chart": chartName, "version": version},
	)
	if err != nil {
		return "", fmt.Errorf("marshal key data: %w", err)
	}

	chartPath, err := c.Paths.GetPath(string(keyData))
	if err != nil {
		return "", fmt.Errorf("get path: %w", err)
	}

	return chartPath, nil
}

func (c *Client) pullRemoteChart(ctx context.Context, chartName, repoURL, version, dstPath string) error {
	// Create empty temp directory to pull the chart into.
	tempDest, err := os.MkdirTemp("", "crdcat-*")
	if err != nil {
		return fmt.Errorf("create temporary destination directory: %w", err)
	}

	defer func() { _ = os.RemoveAll(tempDest) }()

	logger := slog.With(
		slog.String("chart", chartName),
	)

	ap := action.NewPullWithOpts(action.WithConfig(&action.Configuration{
		RegistryClient: c.rc,
		Log: func(msg string, kv ...any) {
			slog.Debug(msg, kv...)
		},
	}))
	ap.Settings = &cli.EnvSettings{
		RepositoryCache: filepath.Join(c.helmHome, "cache"),
	}
	ap.Untar = false
	ap.DestDir = tempDest

	if version != "" {
		ap.Version = version
	}

	chartRef := chartName
	if registry.IsOCI(repoURL) {
		chartRef = strings.TrimSuffix(repoURL, "/") + "/" + chartName
	} else {
		ap.RepoURL = repoURL
	}

	logger.InfoContext(ctx, "pulling chart",
		slog.String("chart_ref", chartRef),
		slog.String("version", ap.Version),
		slog.String("destination", ap.DestDir),
		slog.String("repo_url", ap.RepoURL),
	)

	done := make(chan error, 1)
	go func() {
		_, err := ap.Run(chartRef)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("execute helm pull: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("execute helm pull: %w", err)
		}
	}

	logger.DebugContext(ctx, "chart pull complete")

	// 'helm pull' downloads the chart into a tgz file, which is moved to the
	// cache path if the pull was successful.
	infos, err := os.ReadDir(tempDest)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", tempDest, err)
	}

	if len(infos) != 1 {
		return fmt.Errorf("expected 1 file, found %v", len(infos))
	}

	err = os.MkdirAll(filepath.Dir(dstPath), 0o750)
	if err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	chartFilePath := filepath.Join(tempDest, infos[0].Name())
	logger.DebugContext(ctx, "moving pulled chart",
		slog.String("src", chartFilePath),
		slog.String("dst", dstPath),
	)

	err = os.Rename(chartFilePath, dstPath)
	if err != nil {
		return fmt.Errorf("rename file from %q to %q: %w", chartFilePath, dstPath, err)
	}

	return nil
}
