package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const (
	seedDesc = `This command imports schemas from the public CRD catalog
`
	seedExample = `  crdcat seed [arguments]...
  # Import every group
  crdcat seed

  # Import specific groups
  crdcat seed --groups cert-manager.io,monitoring.coreos.com

  # List available groups
  crdcat seed --list
`
)

// NewSeedCmd returns the seed command.
func NewSeedCmd(arg *RootArgs) *cobra.Command {
	args := NewCatalogArgs(arg)
	groups := new([]string)
	list := new(bool)

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Import schemas from the public CRD catalog",
		Long:         seedDesc,
		Example:      seedExample,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchorDirFlags(cmd, map[string]string{"output": defaultSchemasDir})

			cc, err := newCatalogCommander(cmd.OutOrStdout(), args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogFailed, err)
			}

			if *list {
				all, err := cc.SeedGroups(cmd.Context())
				if err != nil {
					return fmt.Errorf("%w: %w", ErrSeedFailed, err)
				}

				for _, group := range all {
					cmd.Println(group)
				}

				return nil
			}

			n, err := cc.Seed(cmd.Context(), *groups...)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSeedFailed, err)
			}

			cmd.Printf("Imported %d schemas.\n", n)

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(groups, "groups", "g", []string{}, "API groups to import (default all)")
	cmd.Flags().BoolVarP(list, "list", "l", false, "List available groups without importing")

	cmd.Flags().StringVarP(args.output, "output", "o", defaultSchemasDir, "Directory for imported schemas")
	must(cmd.MarkFlagDirname("output"))

	cmd.Flags().DurationVar(args.timeout, "timeout", 5*time.Minute, "Timeout for the command")
	cmd.Flags().IntVarP(args.workers, "workers", "w", 0, "Concurrent downloads (0 = number of CPUs)")
	cmd.Flags().BoolVarP(args.quiet, "quiet", "q", false, "Run in quiet mode")

	return cmd
}
