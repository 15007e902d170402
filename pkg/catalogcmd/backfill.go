package catalogcmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/k8s-schemas/crdcat/pkg/fetch"
	"github.com/k8s-schemas/crdcat/pkg/source"
)

var ErrBackfillWorkerFailed = errors.New("backfill worker failed")

// BackfillOptions bound a backfill run. The zero value processes every
// discovered version.
type BackfillOptions struct {
	// MinVersion drops versions older than the given version.
	MinVersion string

	// MaxVersions caps how many versions are processed per source, newest
	// first. Zero means no cap.
	MaxVersions int
}

// SourceBackfill reports the backfill outcome for one source.
type SourceBackfill struct {
	Name      string
	Found     int
	Processed int
	Schemas   int
}

// BackfillSummary aggregates per-source backfill outcomes, ordered as the
// sources were selected.
type BackfillSummary struct {
	Sources []SourceBackfill
}

func (s BackfillSummary) String() string {
	var b strings.Builder

	b.WriteString("BACKFILL SUMMARY\n")

	var found, processed, schemas int

	for _, src := range s.Sources {
		fmt.Fprintf(&b, "  %s: %d/%d versions, %d schemas\n", src.Name, src.Processed, src.Found, src.Schemas)

		found += src.Found
		processed += src.Processed
		schemas += src.Schemas
	}

	fmt.Fprintf(&b, "\nTotal: %d/%d versions, %d schemas\n", processed, found, schemas)

	return b.String()
}

// Backfill discovers historical versions for the named sources, or all
// sources when no names are given, and extracts each version newest-first.
// Sources fan out to bounded workers; per-version failures collect into the
// returned error and never stop a source or the batch.
func (c *Catalog) Backfill(ctx context.Context, opts BackfillOptions, names ...string) (BackfillSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	logger := slog.With(
		slog.String("cmd", "backfill"),
	)

	sources, loadErr := c.loadSources(names)
	if sources == nil && loadErr != nil {
		return BackfillSummary{}, loadErr
	}

	if len(sources) == 0 {
		return BackfillSummary{}, fmt.Errorf("%w: %s", ErrNoSources, c.SourcesDir)
	}

	sem := semaphore.NewWeighted(c.Workers)
	resChan := make(chan SourceBackfill, len(sources))
	errChan := make(chan error, len(sources))

	c.broadcastEvent(EventSetTotal(len(sources)))

	for _, src := range sources {
		srcLogger := logger.With(
			slog.String("source", src.Name),
		)

		err := sem.Acquire(ctx, 1)
		if err != nil {
			return BackfillSummary{}, fmt.Errorf("%w: %w", ErrBackfillWorkerFailed, err)
		}

		c.broadcastEvent(EventStarted(src.Name))

		go func() {
			defer sem.Release(1)

			srcLogger.Info("backfilling source")

			res, err := c.backfillSource(ctx, srcLogger, src, opts)
			resChan <- res

			if err != nil {
				c.broadcastEvent(EventCompleted{Name: src.Name, Err: err})

				errChan <- fmt.Errorf("backfill %q: %w", src.Name, err)

				return
			}

			c.broadcastEvent(EventCompleted{Name: src.Name})

			srcLogger.Info("finished backfilling source",
				slog.Int("versions", res.Processed),
				slog.Int("schemas", res.Schemas),
			)
		}()
	}

	err := sem.Acquire(ctx, c.Workers)
	if err != nil {
		return BackfillSummary{}, fmt.Errorf("%w: %w", ErrBackfillWorkerFailed, err)
	}

	close(resChan)
	close(errChan)

	order := make(map[string]int, len(sources))
	for i, src := range sources {
		order[src.Name] = i
	}

	summary := BackfillSummary{}
	for res := range resChan {
		summary.Sources = append(summary.Sources, res)
	}

	slices.SortFunc(summary.Sources, func(a, b SourceBackfill) int {
		return cmp.Compare(order[a.Name], order[b.Name])
	})

	var merr error
	if loadErr != nil {
		merr = multierror.Append(merr, loadErr)
	}

	for err := range errChan {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return summary, merr
	}

	logger.Info("backfill complete")

	return summary, nil
}

// backfillSource extracts every selected version of one source, newest
// first. Versions that fail are reported in the returned error; later
// versions still run.
func (c *Catalog) backfillSource(ctx context.Context, logger *slog.Logger, src source.Source, opts BackfillOptions) (SourceBackfill, error) {
	res := SourceBackfill{Name: src.Name}

	versions, err := c.discoverVersions(ctx, src)
	if errors.Is(err, ErrUnsupportedType) {
		logger.Warn("skipping source without version discovery",
			slog.String("type", string(src.Type)),
		)

		return res, nil
	}

	if err != nil {
		return res, err
	}

	versions = fetch.SortVersions(versions)
	if opts.MinVersion != "" {
		versions = fetch.FilterMin(versions, opts.MinVersion)
	}

	versions = fetch.Limit(versions, opts.MaxVersions)

	res.Found = len(versions)

	logger.Info("discovered versions", slog.Int("count", len(versions)))

	var merr *multierror.Error

	for _, version := range versions {
		vres, err := c.extractVersion(ctx, src, version)

		res.Schemas += vres.schemas

		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("version %s: %w", version, err))

			continue
		}

		res.Processed++
	}

	return res, merr.ErrorOrNil()
}

// discoverVersions lists the published versions for a source. URL sources
// have no discovery mechanism and return [ErrUnsupportedType].
func (c *Catalog) discoverVersions(ctx context.Context, src source.Source) ([]string, error) {
	switch src.Type {
	case source.TypeHelm:
		versions, err := c.Helm.ListVersions(ctx, src.Chart, src.Registry)
		if err != nil {
			return nil, fmt.Errorf("list chart versions: %w", err)
		}

		return versions, nil

	case source.TypeGitHub:
		tags, err := c.GitHub.ListReleaseTags(ctx, src.Repo)
		if err != nil {
			return nil, fmt.Errorf("list release tags: %w", err)
		}

		return tags, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, src.Type)
}
