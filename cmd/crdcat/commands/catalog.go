package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/k8s-schemas/crdcat/pkg/catalog"
	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
	"github.com/k8s-schemas/crdcat/pkg/catalogtui"
	"github.com/k8s-schemas/crdcat/pkg/dedupe"
	"github.com/k8s-schemas/crdcat/pkg/index"
	"github.com/k8s-schemas/crdcat/pkg/log"
	"github.com/k8s-schemas/crdcat/pkg/paths"
)

// Directory defaults shared by the catalog commands. Commands re-anchor them
// on the enclosing catalog root when run from a subdirectory.
const (
	defaultSourcesDir = "sources"
	defaultSchemasDir = "schemas"
)

var (
	ErrArgument        = errors.New("argument error")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCatalogFailed   = errors.New("catalog command failed")
	ErrExtractFailed   = errors.New("extract failed")
	ErrBackfillFailed  = errors.New("backfill failed")
	ErrResolveFailed   = errors.New("resolve failed")
	ErrIndexFailed     = errors.New("index failed")
	ErrSeedFailed      = errors.New("seed failed")
	ErrSourcesFailed   = errors.New("sources command failed")
)

type catalogCommander interface {
	Extract(ctx context.Context, names ...string) (catalogcmd.Summary, error)
	Backfill(ctx context.Context, opts catalogcmd.BackfillOptions, names ...string) (catalogcmd.BackfillSummary, error)
	Resolve(ctx context.Context, apply bool) (dedupe.Plan, dedupe.Result, error)
	ResolveReport(ctx context.Context) (string, error)
	AddProvenance(ctx context.Context, name, version string) (int, error)
	Index(ctx context.Context) (*index.Index, error)
	Seed(ctx context.Context, groups ...string) (int, error)
	SeedGroups(ctx context.Context) ([]string, error)
	Subscribe(f func(any))
}

//nolint:ireturn // Multiple concrete types.
func newCatalogCommander(w io.Writer, args *CatalogArgs, opts ...catalogcmd.Option) (catalogCommander, error) {
	store, err := catalog.NewStore(args.GetOutput())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFailed, err)
	}

	catOpts := []catalogcmd.Option{
		catalogcmd.WithTimeout(args.GetTimeout()),
		catalogcmd.WithMaxExtractSize(args.GetMaxExtractSize()),
		catalogcmd.WithWorkers(args.GetWorkers()),
	}
	catOpts = append(catOpts, opts...)

	cc := catalogcmd.NewCatalog(store, args.GetSourcesDir(), catOpts...)

	if args.GetQuiet() || !isatty.IsTerminal(os.Stdout.Fd()) {
		return cc, nil
	}

	lvl, err := log.GetLevel(args.GetLogLevel())
	if err != nil {
		// Should not be possible due to root's PersistentPreRunE.
		return nil, fmt.Errorf("%w: %w", ErrArgument, err)
	}

	return catalogtui.NewCatalogTUI(w, lvl, cc), nil
}

type CatalogArgs struct {
	sourcesDir     *string
	output         *string
	maxExtractSize *string
	timeout        *time.Duration
	workers        *int
	quiet          *bool
	*RootArgs
}

func NewCatalogArgs(args *RootArgs) *CatalogArgs {
	return &CatalogArgs{
		sourcesDir:     new(string),
		output:         new(string),
		maxExtractSize: new(string),
		timeout:        new(time.Duration),
		workers:        new(int),
		quiet:          new(bool),
		RootArgs:       args,
	}
}

func (a *CatalogArgs) GetSourcesDir() string {
	return *a.sourcesDir
}

func (a *CatalogArgs) GetOutput() string {
	return *a.output
}

// GetMaxExtractSize returns the parsed extraction cap, or nil for commands
// that do not register the flag. Parse errors panic; the flag is validated
// before any command runs.
func (a *CatalogArgs) GetMaxExtractSize() *resource.Quantity {
	if *a.maxExtractSize == "" {
		return nil
	}

	size, err := resource.ParseQuantity(*a.maxExtractSize)
	if err != nil {
		panic(err)
	}

	return &size
}

func (a *CatalogArgs) GetTimeout() time.Duration {
	return *a.timeout
}

func (a *CatalogArgs) GetWorkers() int {
	return *a.workers
}

func (a *CatalogArgs) GetQuiet() bool {
	return *a.quiet
}

// addExtractFlags registers the flags shared by extract and backfill.
func addExtractFlags(cmd *cobra.Command, args *CatalogArgs, sources *[]string, all *bool) {
	cmd.Flags().StringSliceVarP(sources, "source", "s", []string{}, "Source to process (repeatable)")
	cmd.Flags().BoolVar(all, "all", false, "Process every configured source")
	cmd.MarkFlagsOneRequired("source", "all")
	cmd.MarkFlagsMutuallyExclusive("source", "all")

	cmd.Flags().StringVar(args.sourcesDir, "sources_dir", defaultSourcesDir, "Directory containing source configs")
	must(cmd.MarkFlagDirname("sources_dir"))

	cmd.Flags().StringVarP(args.output, "output", "o", defaultSchemasDir, "Directory for extracted schemas")
	must(cmd.MarkFlagDirname("output"))

	cmd.Flags().DurationVar(args.timeout, "timeout", 5*time.Minute, "Timeout for the command")
	cmd.Flags().StringVar(args.maxExtractSize, "max_extract_size", "10Mi", "Maximum size of extracted chart archives")
	cmd.Flags().IntVarP(args.workers, "workers", "w", 0, "Concurrent source workers (0 = number of CPUs)")
	cmd.Flags().BoolVarP(args.quiet, "quiet", "q", false, "Run in quiet mode")
}

// anchorDirFlags re-anchors the directory flag defaults in dirs, which maps
// flag names to catalog subdirectories, on the enclosing catalog root. An
// explicitly set flag or a default that already exists relative to the
// working directory keeps every flag as-is, as does failed discovery.
func anchorDirFlags(cmd *cobra.Command, dirs map[string]string) {
	flags := cmd.Flags()

	for name := range dirs {
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			return
		}

		if _, err := os.Stat(f.Value.String()); err == nil {
			return
		}
	}

	root, err := paths.FindCatalogRoot(".")
	if err != nil {
		slog.Debug("no catalog root above working directory", "err", err)

		return
	}

	slog.Debug("anchoring directory defaults", "root", root)

	for name, sub := range dirs {
		// Cannot fail; the flag was looked up above.
		_ = flags.Set(name, filepath.Join(root, sub))
	}
}

func validateCatalogArgs(args *CatalogArgs) error {
	if *args.maxExtractSize == "" {
		return nil
	}

	if _, err := resource.ParseQuantity(*args.maxExtractSize); err != nil {
		return fmt.Errorf("%w: %w: max_extract_size: %w", ErrArgument, ErrInvalidArgument, err)
	}

	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
