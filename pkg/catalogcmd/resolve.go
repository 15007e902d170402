package catalogcmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k8s-schemas/crdcat/pkg/catalog"
	"github.com/k8s-schemas/crdcat/pkg/dedupe"
	"github.com/k8s-schemas/crdcat/pkg/syncs"
)

// applyLock serializes destructive resolver passes per catalog root.
var applyLock = syncs.NewKeyLock()

// Resolve plans a dedupe pass over the catalog roots and applies it.
// Without apply set this is a dry run and nothing is deleted. The returned
// plan carries the keep and remove decisions for rendering.
func (c *Catalog) Resolve(ctx context.Context, apply bool) (dedupe.Plan, dedupe.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	if apply {
		root := c.Store.Root()

		applyLock.Lock(root)
		defer applyLock.Unlock(root)
	}

	r := c.resolver()

	groups, err := r.Scan(ctx)
	if err != nil {
		return dedupe.Plan{}, dedupe.Result{}, fmt.Errorf("scan catalog: %w", err)
	}

	plan := r.Plan(groups)

	result, err := r.Apply(plan, !apply)
	if err != nil {
		return plan, result, fmt.Errorf("apply plan: %w", err)
	}

	slog.Info("resolve complete",
		slog.Int("kept", result.Kept),
		slog.Int("deleted", result.Deleted),
		slog.Int("divergent", result.Divergent),
		slog.Bool("dryRun", result.DryRun),
	)

	return plan, result, nil
}

// ResolveReport renders duplicate statistics for the catalog roots without
// modifying anything.
func (c *Catalog) ResolveReport(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	r := c.resolver()

	groups, err := r.Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("scan catalog: %w", err)
	}

	return r.FormatReport(groups), nil
}

// AddProvenance stamps the given source name and version onto every schema
// document lacking a provenance block, and returns how many documents were
// updated.
func (c *Catalog) AddProvenance(ctx context.Context, name, version string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	n, err := c.resolver().Backfill(ctx, name, version)
	if err != nil {
		return n, fmt.Errorf("backfill provenance: %w", err)
	}

	slog.Info("stamped provenance",
		slog.String("source", name),
		slog.String("version", version),
		slog.Int("schemas", n),
	)

	return n, nil
}

func (c *Catalog) resolver() *dedupe.Resolver {
	stores := append([]*catalog.Store{c.Store}, c.ExtraStores...)

	return dedupe.NewResolver(dedupe.DefaultPriorityTable(), stores...)
}
