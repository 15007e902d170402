package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
)

const (
	extractDesc = `This command extracts JSON schemas from CRD sources
`
	extractExample = `  crdcat extract [arguments]...
  # Extract every configured source
  crdcat extract --all

  # Extract a single source
  crdcat extract --source cert-manager

  # Fail sources whose CRDs have lint findings
  crdcat extract --all --strict
`
)

// NewExtractCmd returns the extract command.
func NewExtractCmd(arg *RootArgs) *cobra.Command {
	args := NewCatalogArgs(arg)
	sources := new([]string)
	all := new(bool)
	strict := new(bool)

	cmd := &cobra.Command{
		Use:          "extract",
		Short:        "Extract CRD schemas from configured sources",
		Long:         extractDesc,
		Example:      extractExample,
		SilenceUsage: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return validateCatalogArgs(args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchorDirFlags(cmd, map[string]string{
				"sources_dir": defaultSourcesDir,
				"output":      defaultSchemasDir,
			})

			cc, err := newCatalogCommander(cmd.OutOrStdout(), args,
				catalogcmd.WithStrict(*strict),
			)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogFailed, err)
			}

			summary, err := cc.Extract(cmd.Context(), *sources...)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrExtractFailed, err)
			}

			cmd.Printf("Extracted %d schemas from %d CRDs across %d sources.\n",
				summary.Schemas, summary.CRDs, summary.Sources)

			return nil
		},
	}

	addExtractFlags(cmd, args, sources, all)

	cmd.Flags().BoolVar(strict, "strict", false, "Fail sources on lint findings or empty extractions")

	return cmd
}
