package catalogcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/k8s-schemas/crdcat/pkg/crd"
	"github.com/k8s-schemas/crdcat/pkg/github"
	"github.com/k8s-schemas/crdcat/pkg/kube"
	"github.com/k8s-schemas/crdcat/pkg/paths"
	"github.com/k8s-schemas/crdcat/pkg/schema"
	"github.com/k8s-schemas/crdcat/pkg/source"
)

var (
	ErrExtractWorkerFailed = errors.New("extract worker failed")
	ErrNoSchemas           = errors.New("no schemas extracted")
	ErrNoSources           = errors.New("no sources found")
	ErrUnsupportedType     = errors.New("unsupported source type")
)

// Summary aggregates the outcome of an extraction batch.
type Summary struct {
	Sources int
	CRDs    int
	Schemas int
	Failed  int
}

// sourceResult carries per-source counts out of a worker.
type sourceResult struct {
	crds    int
	schemas int
}

// Extract loads the named sources, or all sources when no names are given,
// and extracts their CRD schemas into the catalog. Sources fan out to
// bounded workers; per-source failures collect into the returned error and
// never stop the batch.
func (c *Catalog) Extract(ctx context.Context, names ...string) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	logger := slog.With(
		slog.String("cmd", "extract"),
	)

	sources, loadErr := c.loadSources(names)
	if sources == nil && loadErr != nil {
		return Summary{}, loadErr
	}

	if len(sources) == 0 {
		return Summary{}, fmt.Errorf("%w: %s", ErrNoSources, c.SourcesDir)
	}

	logger.Debug("loaded sources", slog.Int("count", len(sources)))

	sem := semaphore.NewWeighted(c.Workers)
	resChan := make(chan sourceResult, len(sources))
	errChan := make(chan error, len(sources))

	c.broadcastEvent(EventSetTotal(len(sources)))

	for _, src := range sources {
		srcLogger := logger.With(
			slog.String("source", src.Name),
			slog.String("version", src.Version),
		)

		err := sem.Acquire(ctx, 1)
		if err != nil {
			return Summary{}, fmt.Errorf("%w: %w", ErrExtractWorkerFailed, err)
		}

		c.broadcastEvent(EventStarted(src.Name))

		go func() {
			defer sem.Release(1)

			srcLogger.Info("extracting source")

			res, err := c.extractVersion(ctx, src, src.Version)
			resChan <- res

			if err != nil {
				c.broadcastEvent(EventCompleted{Name: src.Name, Err: err})

				errChan <- fmt.Errorf("extract %q: %w", src.Name, err)

				return
			}

			c.broadcastEvent(EventCompleted{Name: src.Name})

			srcLogger.Info("finished extracting source", slog.Int("schemas", res.schemas))
		}()
	}

	err := sem.Acquire(ctx, c.Workers)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrExtractWorkerFailed, err)
	}

	close(resChan)
	close(errChan)

	summary := Summary{Sources: len(sources)}
	for res := range resChan {
		summary.CRDs += res.crds
		summary.Schemas += res.schemas
	}

	var merr error
	if loadErr != nil {
		merr = multierror.Append(merr, loadErr)
	}

	for err := range errChan {
		summary.Failed++

		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return summary, merr
	}

	logger.Info("extract complete",
		slog.Int("sources", summary.Sources),
		slog.Int("schemas", summary.Schemas),
	)

	return summary, nil
}

// extractVersion fetches one version of a source, lints it, and writes the
// extracted schemas through the store. In strict mode lint findings and
// empty extractions fail the version.
func (c *Catalog) extractVersion(ctx context.Context, src source.Source, version string) (sourceResult, error) {
	logger := slog.With(
		slog.String("source", src.Name),
		slog.String("version", version),
	)

	crds, err := c.fetchCRDs(ctx, src, version)
	if err != nil {
		return sourceResult{}, err
	}

	lintErrs := crd.Lint(ctx, crds)
	if c.Strict && len(lintErrs) > 0 {
		var lintErr error
		for _, le := range lintErrs {
			lintErr = multierror.Append(lintErr, le)
		}

		return sourceResult{crds: len(crds)}, fmt.Errorf("lint: %w", lintErr)
	}

	for _, le := range lintErrs {
		logger.Warn("schema lint finding", slog.Any("err", le))
	}

	records := crd.Extract(crds, schema.NewProvenance(src.Name, version))
	if len(records) == 0 {
		if c.Strict {
			return sourceResult{crds: len(crds)}, ErrNoSchemas
		}

		logger.Warn("no schemas extracted")

		return sourceResult{crds: len(crds)}, nil
	}

	written, err := c.writeRecords(records)

	return sourceResult{crds: len(crds), schemas: written}, err
}

// fetchCRDs returns the CRD objects for one version of a source.
func (c *Catalog) fetchCRDs(ctx context.Context, src source.Source, version string) ([]kube.Object, error) {
	switch src.Type {
	case source.TypeHelm:
		return c.fetchHelmCRDs(ctx, src, version)
	case source.TypeGitHub:
		return c.fetchGitHubCRDs(ctx, src, version)
	case source.TypeURL:
		return c.fetchURLCRDs(ctx, src, version)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, src.Type)
}

func (c *Catalog) fetchHelmCRDs(ctx context.Context, src source.Source, version string) ([]kube.Object, error) {
	chart, err := c.Helm.Pull(ctx, src.Chart, src.Registry, version)
	if err != nil {
		return nil, fmt.Errorf("pull chart: %w", err)
	}

	manifest, err := chart.GetCRDFiles(ctx, src.Values)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	crds, err := crd.FromData(manifest)
	if err != nil {
		return nil, fmt.Errorf("parse rendered manifest: %w", err)
	}

	return crds, nil
}

func (c *Catalog) fetchGitHubCRDs(ctx context.Context, src source.Source, version string) ([]kube.Object, error) {
	fileURLs, err := c.githubFileURLs(ctx, src, version)
	if err != nil {
		return nil, err
	}

	var crds []kube.Object

	for _, fileURL := range fileURLs {
		data, err := c.GitHub.Download(ctx, fileURL)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", fileURL, err)
		}

		objs, err := crd.FromData(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fileURL, err)
		}

		crds = append(crds, objs...)
	}

	return crds, nil
}

// githubFileURLs resolves the download URLs for a github source. A CRD path
// is discovered recursively; otherwise the configured assets are resolved
// against the release for the version.
func (c *Catalog) githubFileURLs(ctx context.Context, src source.Source, version string) ([]string, error) {
	if src.CRDPath != "" {
		files, err := c.GitHub.ListYAMLFiles(ctx, src.Repo, version, src.CRDPath)
		if err != nil {
			return nil, fmt.Errorf("discover CRD files: %w", err)
		}

		fileURLs := make([]string, 0, len(files))
		for _, f := range files {
			fileURLs = append(fileURLs, github.RawFileURL(src.Repo, version, f))
		}

		return fileURLs, nil
	}

	fileURLs := make([]string, 0, len(src.Assets))
	for _, asset := range src.Assets {
		fileURLs = append(fileURLs, github.AssetURL(src.Repo, version, asset))
	}

	return fileURLs, nil
}

// fetchURLCRDs fetches a url source. The reference is either a remote URL
// or a manifest file vendored under the sources directory; local references
// are boundary-checked so a config cannot read outside it.
func (c *Catalog) fetchURLCRDs(ctx context.Context, src source.Source, version string) ([]kube.Object, error) {
	ref := strings.ReplaceAll(src.URL, "{version}", version)

	resolved, err := paths.ResolveFilePathOrURL(c.SourcesDir, c.SourcesDir, ref, []string{"http", "https"})
	if err != nil {
		return nil, fmt.Errorf("resolve source reference %q: %w", ref, err)
	}

	if crdURL, ok := resolved.URL(); ok {
		crds, err := crd.FromURL(ctx, c.HTTP, crdURL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ref, err)
		}

		return crds, nil
	}

	crds, err := crd.FromPath(resolved.String())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resolved.String(), err)
	}

	return crds, nil
}

// writeRecords writes extracted records through the store. Workers write
// concurrently and distinct sources can carry the same GVK, so writes are
// serialized.
func (c *Catalog) writeRecords(records []crd.Record) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var merr *multierror.Error

	written := 0

	for _, r := range records {
		_, err := c.Store.Write(r.GVK, r.Schema)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("write %s: %w", r.GVK, err))

			continue
		}

		written++
	}

	return written, merr.ErrorOrNil()
}
