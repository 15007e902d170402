package catalogcmd

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/k8s-schemas/crdcat/pkg/catalog"
	"github.com/k8s-schemas/crdcat/pkg/crd"
	"github.com/k8s-schemas/crdcat/pkg/github"
	"github.com/k8s-schemas/crdcat/pkg/helm"
	"github.com/k8s-schemas/crdcat/pkg/source"
)

// GitHubClient covers the GitHub operations used by catalog commands: CRD
// directory discovery, release listing, and raw or asset downloads.
// See [github.Client] for an implementation.
type GitHubClient interface {
	ListContents(ctx context.Context, repo, ref, path string) ([]github.Entry, error)
	ListYAMLFiles(ctx context.Context, repo, ref, path string) ([]string, error)
	ListReleaseTags(ctx context.Context, repo string) ([]string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Catalog orchestrates schema extraction over the configured sources,
// writing through a catalog store. Create instances with [NewCatalog].
type Catalog struct {
	Store          *catalog.Store
	Helm           helm.ChartClient
	GitHub         GitHubClient
	HTTP           crd.HTTPDoer
	MaxExtractSize *resource.Quantity
	SourcesDir     string

	// ExtraStores are additional catalog roots (seed or staging trees)
	// included in resolver passes.
	ExtraStores []*catalog.Store

	subs    []func(any)
	Timeout time.Duration
	Workers int64
	writeMu sync.Mutex
	Strict  bool
}

// NewCatalog creates a [Catalog] reading source configs from sourcesDir and
// writing schemas through store.
func NewCatalog(store *catalog.Store, sourcesDir string, opts ...Option) *Catalog {
	c := &Catalog{
		Store:      store,
		SourcesDir: sourcesDir,
		Helm:       helm.DefaultClient,
		GitHub:     github.NewClient(),
		HTTP:       http.DefaultClient,
		Timeout:    5 * time.Minute,
		Workers:    int64(runtime.GOMAXPROCS(0)),
		subs:       []func(any){},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.MaxExtractSize != nil {
		if hc, ok := c.Helm.(*helm.Client); ok {
			hc.MaxExtractSize = *c.MaxExtractSize
		}
	}

	return c
}

type Option func(*Catalog)

// WithHelmClient sets the chart client used for helm sources.
func WithHelmClient(hc helm.ChartClient) Option {
	return func(c *Catalog) {
		c.Helm = hc
	}
}

// WithGitHubClient sets the client used for github sources and seed imports.
func WithGitHubClient(gc GitHubClient) Option {
	return func(c *Catalog) {
		c.GitHub = gc
	}
}

// WithHTTPClient sets the client used for url sources.
func WithHTTPClient(hc crd.HTTPDoer) Option {
	return func(c *Catalog) {
		c.HTTP = hc
	}
}

// WithTimeout bounds each operation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Catalog) {
		c.Timeout = timeout
	}
}

// WithMaxExtractSize caps the decompressed size of pulled chart archives.
func WithMaxExtractSize(size *resource.Quantity) Option {
	return func(c *Catalog) {
		c.MaxExtractSize = size
	}
}

// WithWorkers sets the number of concurrent source workers.
func WithWorkers(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.Workers = int64(n)
		}
	}
}

// WithStrict makes lint findings and empty extractions fail their source
// instead of logging warnings.
func WithStrict(strict bool) Option {
	return func(c *Catalog) {
		c.Strict = strict
	}
}

// WithExtraStores adds catalog roots included in resolver passes alongside
// the main store. Roots must not overlap.
func WithExtraStores(stores ...*catalog.Store) Option {
	return func(c *Catalog) {
		c.ExtraStores = append(c.ExtraStores, stores...)
	}
}

// Subscribe registers f to receive progress events. Subscribers must be
// registered before an operation starts.
func (c *Catalog) Subscribe(f func(any)) {
	c.subs = append(c.subs, f)
}

func (c *Catalog) broadcastEvent(evt any) {
	for _, sub := range c.subs {
		sub(evt)
	}
}

// loadSources reads every source config and selects the named subset. With
// no names, all sources are returned. Invalid configs become a non-nil error
// alongside the sources that did load.
func (c *Catalog) loadSources(names []string) ([]source.Source, error) {
	sources, err := source.Load(c.SourcesDir)
	if err != nil && len(sources) == 0 {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	if len(names) == 0 {
		return sources, err
	}

	selected := make([]source.Source, 0, len(names))

	for _, name := range names {
		src, getErr := source.Get(sources, name)
		if getErr != nil {
			// A config error may be why the name is missing, so keep both.
			return nil, multierror.Append(getErr, err)
		}

		selected = append(selected, src)
	}

	return selected, err
}
