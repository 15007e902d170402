package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

const (
	indexDesc = `This command generates the catalog index
`
	indexExample = `  crdcat index [arguments]...
  # Regenerate schemas/schemas-index.json
  crdcat index

  # Write an extra copy for publishing
  crdcat index --output public/schemas-index.json
`
)

// NewIndexCmd returns the index command.
func NewIndexCmd(arg *RootArgs) *cobra.Command {
	args := NewCatalogArgs(arg)
	output := new(string)

	cmd := &cobra.Command{
		Use:          "index",
		Short:        "Generate the catalog index",
		Long:         indexDesc,
		Example:      indexExample,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchorDirFlags(cmd, map[string]string{"schemas_dir": defaultSchemasDir})

			cc, err := newCatalogCommander(cmd.OutOrStdout(), args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogFailed, err)
			}

			idx, err := cc.Index(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrIndexFailed, err)
			}

			if *output != "" {
				err := writeIndexCopy(*output, idx)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrIndexFailed, err)
				}
			}

			cmd.Printf("Indexed %d schemas in %d groups.\n",
				idx.Stats.TotalSchemas, idx.Stats.TotalGroups)

			return nil
		},
	}

	cmd.Flags().StringVar(args.output, "schemas_dir", defaultSchemasDir, "Directory containing the schema catalog")
	must(cmd.MarkFlagDirname("schemas_dir"))

	cmd.Flags().StringVarP(output, "output", "o", "", "Write a copy of the index to this path")
	must(cmd.MarkFlagFilename("output"))

	cmd.Flags().DurationVar(args.timeout, "timeout", 5*time.Minute, "Timeout for the command")
	cmd.Flags().BoolVarP(args.quiet, "quiet", "q", false, "Run in quiet mode")

	return cmd
}

func writeIndexCopy(path string, idx any) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	data = append(data, '\n')

	err = os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write index copy: %w", err)
	}

	return nil
}
