package catalogcmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k8s-schemas/crdcat/pkg/index"
)

// Index regenerates the catalog index from the main store and writes it
// alongside the schemas.
func (c *Catalog) Index(ctx context.Context) (*index.Index, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	idx, err := index.Generate(ctx, c.Store)
	if err != nil {
		return nil, fmt.Errorf("generate index: %w", err)
	}

	path, err := index.Write(c.Store, idx)
	if err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	slog.Info("wrote catalog index",
		slog.String("path", path),
		slog.Int("schemas", idx.Stats.TotalSchemas),
		slog.Int("groups", idx.Stats.TotalGroups),
	)

	return idx, nil
}
