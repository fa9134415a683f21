package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/methodex/internal/workspace"
)

// DefaultDataDir holds uploaded project copies unless --data says otherwise.
const DefaultDataDir = "data"

func newUploadCommand(opts *globalOptions) *cobra.Command {
	var (
		source  string
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Copy a project tree into the data directory",
		Long: `Upload copies the project at --source into <data>/<project name>, keeping its
directory structure and file permissions. Symlinks are copied as links.

Example:
  methodex upload --source ~/src/shop --data ./data
  methodex extract --project ./data/shop --ext java
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := workspace.CopyProject(cmd.Context(), source, dataDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(opts.stdout, "Copied %s files (%s bytes) into %s\n",
				formatNumber(stats.Files), formatNumber(int(stats.Bytes)), stats.Destination)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Project directory to copy")
	cmd.Flags().StringVarP(&dataDir, "data", "d", DefaultDataDir, "Data directory")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
