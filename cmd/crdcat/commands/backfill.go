package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
)

const (
	backfillDesc = `This command extracts schemas for historical source versions
`
	backfillExample = `  crdcat backfill [arguments]...
  # Backfill every version of every source
  crdcat backfill --all

  # Backfill one source, stopping at v1.0.0
  crdcat backfill --source cert-manager --min_version v1.0.0

  # Backfill the five most recent versions
  crdcat backfill --all --max_versions 5
`
)

// NewBackfillCmd returns the backfill command.
func NewBackfillCmd(arg *RootArgs) *cobra.Command {
	args := NewCatalogArgs(arg)
	sources := new([]string)
	all := new(bool)
	minVersion := new(string)
	maxVersions := new(int)

	cmd := &cobra.Command{
		Use:          "backfill",
		Short:        "Extract schemas for historical source versions",
		Long:         backfillDesc,
		Example:      backfillExample,
		SilenceUsage: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return validateCatalogArgs(args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchorDirFlags(cmd, map[string]string{
				"sources_dir": defaultSourcesDir,
				"output":      defaultSchemasDir,
			})

			cc, err := newCatalogCommander(cmd.OutOrStdout(), args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogFailed, err)
			}

			summary, err := cc.Backfill(cmd.Context(), catalogcmd.BackfillOptions{
				MinVersion:  *minVersion,
				MaxVersions: *maxVersions,
			}, *sources...)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBackfillFailed, err)
			}

			cmd.Print(summary.String())

			return nil
		},
	}

	addExtractFlags(cmd, args, sources, all)

	cmd.Flags().StringVar(minVersion, "min_version", "", "Skip versions older than this version")
	cmd.Flags().IntVar(maxVersions, "max_versions", 0, "Process at most this many versions per source (0 = all)")

	return cmd
}
