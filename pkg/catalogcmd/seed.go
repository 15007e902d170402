package catalogcmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k8s-schemas/crdcat/pkg/seed"
)

// Seed imports the named groups from the public seed collection into the
// catalog. With no groups given, every group is imported. The number of
// imported schemas is returned.
func (c *Catalog) Seed(ctx context.Context, groups ...string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	im := seed.NewImporter(c.GitHub, c.Store, seed.WithWorkers(int(c.Workers)))

	if len(groups) == 0 {
		all, err := im.ListGroups(ctx)
		if err != nil {
			return 0, fmt.Errorf("list groups: %w", err)
		}

		groups = all
	}

	n, err := im.Import(ctx, groups)
	if err != nil {
		return n, fmt.Errorf("import seed schemas: %w", err)
	}

	slog.Info("seed import complete",
		slog.Int("groups", len(groups)),
		slog.Int("schemas", n),
	)

	return n, nil
}

// SeedGroups lists the groups available in the seed collection.
func (c *Catalog) SeedGroups(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	im := seed.NewImporter(c.GitHub, c.Store)

	groups, err := im.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	return groups, nil
}
