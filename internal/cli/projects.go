package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/methodex/internal/workspace"
)

func newProjectsCommand(opts *globalOptions) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := workspace.ListProjects(dataDir)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintf(opts.stderr, "No projects in %s\n", dataDir)
				return nil
			}
			for _, p := range projects {
				fmt.Fprintln(opts.stdout, p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataDir, "data", "d", DefaultDataDir, "Data directory")
	return cmd
}
