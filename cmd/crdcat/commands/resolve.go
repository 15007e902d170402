package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/k8s-schemas/crdcat/pkg/catalog"
	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
	"github.com/k8s-schemas/crdcat/pkg/dedupe"
)

const (
	resolveDesc = `This command resolves duplicate schemas across sources
`
	resolveExample = `  crdcat resolve <command> [arguments]...
  # Report duplicates without touching any files
  crdcat resolve report

  # Preview which duplicates a run would delete
  crdcat resolve run

  # Delete duplicates, keeping the highest priority source
  crdcat resolve run --execute

  # Stamp schemas that predate provenance tracking
  crdcat resolve add-provenance --source legacy-import --source_version 2024-01-01
`
)

// NewResolveCmd returns the resolve command.
func NewResolveCmd(arg *RootArgs) *cobra.Command {
	args := NewCatalogArgs(arg)
	extraDirs := new([]string)

	cmd := &cobra.Command{
		Use:          "resolve",
		Short:        "Resolve duplicate schemas across sources",
		Long:         resolveDesc,
		Example:      resolveExample,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(args.output, "schemas_dir", defaultSchemasDir, "Directory containing the schema catalog")
	must(cmd.MarkPersistentFlagDirname("schemas_dir"))

	cmd.PersistentFlags().
		StringSliceVar(extraDirs, "extra_dir", []string{}, "Additional catalog root to include (repeatable)")
	must(cmd.MarkPersistentFlagDirname("extra_dir"))

	cmd.PersistentFlags().DurationVar(args.timeout, "timeout", 5*time.Minute, "Timeout for the command")
	cmd.PersistentFlags().BoolVarP(args.quiet, "quiet", "q", false, "Run in quiet mode")

	cmd.AddCommand(NewResolveReportCmd(args, extraDirs))
	cmd.AddCommand(NewResolveRunCmd(args, extraDirs))
	cmd.AddCommand(NewResolveProvenanceCmd(args, extraDirs))

	return cmd
}

func NewResolveReportCmd(args *CatalogArgs, extraDirs *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Report duplicate schemas without modifying files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := newResolveCommander(cmd, args, *extraDirs)
			if err != nil {
				return err
			}

			report, err := cc.ResolveReport(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrResolveFailed, err)
			}

			cmd.Print(report)

			return nil
		},
		SilenceUsage: true,
	}
}

func NewResolveRunCmd(args *CatalogArgs, extraDirs *[]string) *cobra.Command {
	execute := new(bool)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Delete duplicate schemas, keeping the highest priority source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := newResolveCommander(cmd, args, *extraDirs)
			if err != nil {
				return err
			}

			plan, result, err := cc.Resolve(cmd.Context(), *execute)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrResolveFailed, err)
			}

			cmd.Print(dedupe.FormatPlan(plan, result.DryRun))

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(execute, "execute", false, "Apply deletions (default is a dry run)")

	return cmd
}

func NewResolveProvenanceCmd(args *CatalogArgs, extraDirs *[]string) *cobra.Command {
	sourceName := new(string)
	sourceVersion := new(string)

	cmd := &cobra.Command{
		Use:   "add-provenance",
		Short: "Stamp schemas that predate provenance tracking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := newResolveCommander(cmd, args, *extraDirs)
			if err != nil {
				return err
			}

			n, err := cc.AddProvenance(cmd.Context(), *sourceName, *sourceVersion)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrResolveFailed, err)
			}

			cmd.Printf("Stamped %d schemas.\n", n)

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(sourceName, "source", "s", "", "Source name to stamp (required)")
	cmd.Flags().StringVar(sourceVersion, "source_version", "", "Source version to stamp (required)")

	must(cmd.MarkFlagRequired("source"))
	must(cmd.MarkFlagRequired("source_version"))

	return cmd
}

//nolint:ireturn // Multiple concrete types.
func newResolveCommander(cmd *cobra.Command, args *CatalogArgs, extraDirs []string) (catalogCommander, error) {
	anchorDirFlags(cmd, map[string]string{"schemas_dir": defaultSchemasDir})

	opts := make([]catalogcmd.Option, 0, len(extraDirs))

	for _, dir := range extraDirs {
		store, err := catalog.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: extra catalog %s: %w", ErrCatalogFailed, dir, err)
		}

		opts = append(opts, catalogcmd.WithExtraStores(store))
	}

	cc, err := newCatalogCommander(cmd.OutOrStdout(), args, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFailed, err)
	}

	return cc, nil
}
