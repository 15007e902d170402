package catalogtui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
	"github.com/k8s-schemas/crdcat/pkg/dedupe"
	"github.com/k8s-schemas/crdcat/pkg/index"
	"github.com/k8s-schemas/crdcat/pkg/log"
)

type CatalogTUI struct {
	cat Commander
	p   *tea.Program
	w   io.Writer
}

type Commander interface {
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

func NewCatalogTUI(w io.Writer, lvl slog.Level, cat Commander) *CatalogTUI {
	c := &CatalogTUI{
		cat: cat,
		w:   w,
	}

	c.cat.Subscribe(c.broadcastEvent)

	slog.SetDefault(
		slog.New(log.CreateHandler(c, lvl, log.FormatText)),
	)

	return c
}

func (c *CatalogTUI) broadcastEvent(evt any) {
	if c.p != nil {
		c.p.Send(evt)
	}
}

func (c *CatalogTUI) Write(p []byte) (int, error) {
	c.broadcastEvent(catalogcmd.EventLog(string(p)))

	return len(p), nil
}

func (c *CatalogTUI) Subscribe(f func(any)) {
	c.cat.Subscribe(f)
}

// runProgram renders the given model while op runs in the background. If the
// program exits before op completes (e.g. the user quit), op's context is
// canceled and runProgram waits for it to return, so results written by op are
// safe to read once runProgram returns.
func (c *CatalogTUI) runProgram(ctx context.Context, m tea.Model, op func(ctx context.Context) error) error {
	c.p = tea.NewProgram(m, tea.WithOutput(c.w))

	ctx, cancel := context.WithCancel(ctx)

	done := make(chan struct{})

	go func() {
		defer close(done)

		err := op(ctx)
		c.broadcastEvent(catalogcmd.EventDone{Err: err})
	}()

	_, err := c.p.Run()

	cancel()
	<-done

	if err != nil {
		return fmt.Errorf("launch tui: %w", err)
	}

	return nil
}

func (c *CatalogTUI) Extract(ctx context.Context, names ...string) (catalogcmd.Summary, error) {
	var (
		summary catalogcmd.Summary
		opErr   error
	)

	err := c.runProgram(ctx, NewSourcesModel("extracting"), func(ctx context.Context) error {
		summary, opErr = c.cat.Extract(ctx, names...)

		return opErr
	})
	if err != nil {
		return catalogcmd.Summary{}, err
	}

	return summary, opErr
}

func (c *CatalogTUI) Backfill(ctx context.Context, opts catalogcmd.BackfillOptions, names ...string) (catalogcmd.BackfillSummary, error) {
	var (
		summary catalogcmd.BackfillSummary
		opErr   error
	)

	err := c.runProgram(ctx, NewSourcesModel("backfilling"), func(ctx context.Context) error {
		summary, opErr = c.cat.Backfill(ctx, opts, names...)

		return opErr
	})
	if err != nil {
		return catalogcmd.BackfillSummary{}, err
	}

	return summary, opErr
}

func (c *CatalogTUI) Resolve(ctx context.Context, apply bool) (dedupe.Plan, dedupe.Result, error) {
	var (
		plan   dedupe.Plan
		result dedupe.Result
		opErr  error
	)

	err := c.runProgram(ctx, NewActionModel("resolve", "resolving"), func(ctx context.Context) error {
		plan, result, opErr = c.cat.Resolve(ctx, apply)

		return opErr
	})
	if err != nil {
		return dedupe.Plan{}, dedupe.Result{}, err
	}

	return plan, result, opErr
}

// ResolveReport delegates directly, since its output is the report itself.
func (c *CatalogTUI) ResolveReport(ctx context.Context) (string, error) {
	return c.cat.ResolveReport(ctx) //nolint:wrapcheck // Pass-through.
}

func (c *CatalogTUI) AddProvenance(ctx context.Context, name, version string) (int, error) {
	var (
		stamped int
		opErr   error
	)

	err := c.runProgram(ctx, NewActionModel("provenance", "stamping provenance"), func(ctx context.Context) error {
		stamped, opErr = c.cat.AddProvenance(ctx, name, version)

		return opErr
	})
	if err != nil {
		return 0, err
	}

	return stamped, opErr
}

func (c *CatalogTUI) Index(ctx context.Context) (*index.Index, error) {
	var (
		idx   *index.Index
		opErr error
	)

	err := c.runProgram(ctx, NewActionModel("index", "indexing"), func(ctx context.Context) error {
		idx, opErr = c.cat.Index(ctx)

		return opErr
	})
	if err != nil {
		return nil, err
	}

	return idx, opErr
}

func (c *CatalogTUI) Seed(ctx context.Context, groups ...string) (int, error) {
	var (
		imported int
		opErr    error
	)

	err := c.runProgram(ctx, NewActionModel("seed", "seeding"), func(ctx context.Context) error {
		imported, opErr = c.cat.Seed(ctx, groups...)

		return opErr
	})
	if err != nil {
		return 0, err
	}

	return imported, opErr
}

// SeedGroups delegates directly, since its output is the group listing itself.
func (c *CatalogTUI) SeedGroups(ctx context.Context) ([]string, error) {
	return c.cat.SeedGroups(ctx) //nolint:wrapcheck // Pass-through.
}
