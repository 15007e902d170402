package helm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"helm.sh/helm/v3/pkg/registry"
	"helm.sh/helm/v3/pkg/repo"
	"sigs.k8s.io/yaml"

	"github.com/k8s-schemas/crdcat/internal/version"
)

// ErrIndexUnavailable reports a repository index that could not be fetched.
var ErrIndexUnavailable = errors.New("helm repository index unavailable")

// ListVersions returns the published versions of the chart, in the order the
// repository reports them. HTTP repositories are read through <repo>/index.yaml,
// OCI repositories through the registry tag list. An unknown chart yields an
// empty slice.
func (c *Client) ListVersions(ctx context.Context, chartName, repoURL string) ([]string, error) {
	if registry.IsOCI(repoURL) {
		ref := strings.TrimSuffix(repoURL, "/") + "/" + chartName
		ref = strings.TrimPrefix(ref, registry.OCIScheme+"://")

		tags, err := c.rc.Tags(ref)
		if err != nil {
			return nil, fmt.Errorf("list tags for %q: %w", ref, err)
		}

		return tags, nil
	}

	idx, err := c.repoIndex(ctx, repoURL)
	if err != nil {
		return nil, err
	}

	entries := idx.Entries[chartName]
	versions := make([]string, 0, len(entries))

	for _, cv := range entries {
		if cv == nil || cv.Metadata == nil {
			slog.Debug("skipping malformed index entry",
				slog.String("chart", chartName),
				slog.String("repo_url", repoURL),
			)

			continue
		}

		versions = append(versions, cv.Version)
	}

	return versions, nil
}

// repoIndex fetches and parses <repoURL>/index.yaml, caching the result per
// URL for the process lifetime.
func (c *Client) repoIndex(ctx context.Context, repoURL string) (*repo.IndexFile, error) {
	indexURL := strings.TrimSuffix(repoURL, "/") + "/index.yaml"

	c.indexMu.RLock()
	idx, ok := c.indexes[indexURL]
	c.indexMu.RUnlock()

	if ok {
		return idx, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request for %q: %w", indexURL, err)
	}

	req.Header.Set("User-Agent", version.GetUserAgent())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %q: %w", ErrIndexUnavailable, indexURL, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrIndexUnavailable, indexURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read index body: %w", err)
	}

	idx = &repo.IndexFile{}

	err = yaml.Unmarshal(data, idx)
	if err != nil {
		return nil, fmt.Errorf("parse index %q: %w", indexURL, err)
	}

	c.indexMu.Lock()
	c.indexes[indexURL] = idx
	c.indexMu.Unlock()

	return idx, nil
}
