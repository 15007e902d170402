package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/k8s-schemas/crdcat/pkg/catalog"
	"github.com/k8s-schemas/crdcat/pkg/github"
	"github.com/k8s-schemas/crdcat/pkg/schema"
)

// Defaults for the public seed catalog.
const (
	DefaultRepo = "datreeio/CRDs-catalog"
	DefaultRef  = "main"

	defaultWorkers = 5

	utilitiesDir = "Utilities"
)

// ErrImportWorkerFailed indicates the worker pool stopped before all
// groups were handed out.
var ErrImportWorkerFailed = errors.New("import worker failed")

var schemaFileRE = regexp.MustCompile(`^(.+)_(v\d+(?:alpha\d+|beta\d+)?)$`)

// Client is the GitHub surface the importer needs.
type Client interface {
	ListContents(ctx context.Context, repo, ref, path string) ([]github.Entry, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Importer copies schemas from a seed repository laid out as
// {group}/{kind}_{version}.json into the catalog store.
type Importer struct {
	client  Client
	store   *catalog.Store
	repo    string
	ref     string
	workers int64
}

// Option configures an [Importer].
type Option func(*Importer)

// WithRepo overrides the seed repository ("owner/name").
func WithRepo(repo string) Option {
	return func(im *Importer) {
		im.repo = repo
	}
}

// WithRef overrides the git ref schemas are fetched at.
func WithRef(ref string) Option {
	return func(im *Importer) {
		im.ref = ref
	}
}

// WithWorkers sets the number of concurrent group imports.
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = int64(n)
		}
	}
}

// NewImporter returns an importer reading from [DefaultRepo] at
// [DefaultRef] unless configured otherwise.
func NewImporter(client Client, store *catalog.Store, opts ...Option) *Importer {
	im := &Importer{
		client:  client,
		store:   store,
		repo:    DefaultRepo,
		ref:     DefaultRef,
		workers: defaultWorkers,
	}

	for _, opt := range opts {
		opt(im)
	}

	return im
}

// ListGroups returns the API group directories at the repository root,
// sorted. Dotfiles, capitalized entries and the Utilities folder are not
// API groups.
func (im *Importer) ListGroups(ctx context.Context) ([]string, error) {
	entries, err := im.client.ListContents(ctx, im.repo, im.ref, "")
	if err != nil {
		return nil, fmt.Errorf("list seed groups: %w", err)
	}

	groups := []string{}

	for _, e := range entries {
		if e.Type != github.TypeDir || skipGroup(e.Name) {
			continue
		}

		groups = append(groups, e.Name)
	}

	slices.Sort(groups)

	return groups, nil
}

func skipGroup(name string) bool {
	if name == "" || name == utilitiesDir || strings.HasPrefix(name, ".") {
		return true
	}

	r, _ := utf8.DecodeRuneInString(name)

	return unicode.IsUpper(r)
}

// ParseFilename splits a seed schema filename like "certificate_v1.json"
// into its lower-cased kind and version. Files outside the layout report
// false.
func ParseFilename(name string) (string, string, bool) {
	stem, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return "", "", false
	}

	m := schemaFileRE.FindStringSubmatch(stem)
	if m == nil {
		return "", "", false
	}

	return strings.ToLower(m[1]), m[2], true
}

// Import fans the groups out to bounded workers and returns the total
// number of schemas imported. Per-group failures are aggregated while the
// remaining groups finish.
func (im *Importer) Import(ctx context.Context, groups []string) (int, error) {
	sem := semaphore.NewWeighted(im.workers)
	countChan := make(chan int, len(groups))
	errChan := make(chan error, len(groups))

	for _, group := range groups {
		err := sem.Acquire(ctx, 1)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrImportWorkerFailed, err)
		}

		go func() {
			defer sem.Release(1)

			logger := slog.With(slog.String("group", group))
			logger.Info("importing group")

			count, err := im.ImportGroup(ctx, group)
			if err != nil {
				errChan <- err
			}

			countChan <- count

			logger.Info("finished importing group", slog.Int("schemas", count))
		}()
	}

	err := sem.Acquire(ctx, im.workers)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrImportWorkerFailed, err)
	}

	close(countChan)
	close(errChan)

	total := 0
	for count := range countChan {
		total += count
	}

	var merr error
	for err := range errChan {
		merr = multierror.Append(merr, err)
	}

	return total, merr
}

// ImportGroup imports every parseable schema file in one group directory
// and returns the number imported. A failing file is reported and the rest
// of the group still imports.
func (im *Importer) ImportGroup(ctx context.Context, group string) (int, error) {
	entries, err := im.client.ListContents(ctx, im.repo, im.ref, group)
	if err != nil {
		return 0, fmt.Errorf("list group %s: %w", group, err)
	}

	count := 0

	var merr error

	for _, e := range entries {
		if e.Type != github.TypeFile || !strings.HasSuffix(e.Name, ".json") {
			continue
		}

		kind, version, ok := ParseFilename(e.Name)
		if !ok {
			slog.Debug("skipping file outside the kind_version layout",
				slog.String("group", group),
				slog.String("file", e.Name),
			)

			continue
		}

		gvk := schema.GVK{Group: group, Version: version, Kind: kind}

		err := im.importSchema(ctx, group, e.Name, gvk)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("import %s/%s: %w", group, e.Name, err))

			continue
		}

		count++
	}

	return count, merr
}

func (im *Importer) importSchema(ctx context.Context, group, filename string, gvk schema.GVK) error {
	data, err := im.client.Download(ctx, github.RawFileURL(im.repo, im.ref, group+"/"+filename))
	if err != nil {
		return err
	}

	doc, err := schema.Decode(data)
	if err != nil {
		return err
	}

	doc.SetID(gvk.ID())

	if _, ok := doc["$schema"]; !ok {
		doc["$schema"] = schema.MetaSchemaURI
	}

	_, err = im.store.Write(gvk, doc)
	if err != nil {
		return err
	}

	return nil
}
