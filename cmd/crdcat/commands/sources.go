package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/k8s-schemas/crdcat/pkg/source"
)

const (
	sourcesDesc = `This command inspects and validates source configs
`
	sourcesExample = `  crdcat sources <command> [arguments]...
  # Validate every source config
  crdcat sources validate

  # Print the source config schema
  crdcat sources schema

  # Write the source config schema next to the sources directory
  crdcat sources schema --output sources.schema.json
`
)

// NewSourcesCmd returns the sources command.
func NewSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sources",
		Short:        "Source configuration tools",
		Long:         sourcesDesc,
		Example:      sourcesExample,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewSourcesValidateCmd())
	cmd.AddCommand(NewSourcesSchemaCmd())

	return cmd
}

func NewSourcesValidateCmd() *cobra.Command {
	sourcesDir := new(string)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate source configs against the config schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchorDirFlags(cmd, map[string]string{"sources_dir": defaultSourcesDir})

			sources, err := source.Load(*sourcesDir)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSourcesFailed, err)
			}

			validator, err := source.NewValidator()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSourcesFailed, err)
			}

			var merr *multierror.Error
			for _, src := range sources {
				merr = multierror.Append(merr, validator.Validate(src))
			}

			if err := merr.ErrorOrNil(); err != nil {
				return fmt.Errorf("%w: %w", ErrSourcesFailed, err)
			}

			cmd.Printf("%d sources OK.\n", len(sources))

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(sourcesDir, "sources_dir", defaultSourcesDir, "Directory containing source configs")
	must(cmd.MarkFlagDirname("sources_dir"))

	return cmd
}

func NewSourcesSchemaCmd() *cobra.Command {
	output := new(string)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the source config schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := source.ConfigSchema()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSourcesFailed, err)
			}

			outFile := *output

			// If no output file is specified, print to stdout.
			if outFile == "" {
				cmd.Println(string(data))

				return nil
			}

			err = os.MkdirAll(filepath.Dir(outFile), 0o750)
			if err != nil {
				return fmt.Errorf("%w: failed to create output directory: %w", ErrSourcesFailed, err)
			}

			err = os.WriteFile(outFile, data, 0o600)
			if err != nil {
				return fmt.Errorf("%w: failed to write to output file: %w", ErrSourcesFailed, err)
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(output, "output", "o", "", "Write the schema to this path instead of stdout")
	must(cmd.MarkFlagFilename("output"))

	return cmd
}
