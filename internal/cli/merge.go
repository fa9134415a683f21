package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/methodex/internal/workspace"
)

func newMergeCommand(opts *globalOptions) *cobra.Command {
	var (
		project    string
		extensions []string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Concatenate every matching source file of a project into one file",
		Long: `Merge writes the lines of every file whose extension matches --ext into a
single text file, in the same order extract visits files.

Examples:
  methodex merge --project ./shop --ext java
  methodex merge --project ./shop --ext py,rb --out all-sources.txt
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(project)
			if err != nil {
				return err
			}
			logger := opts.newLogger(cfg.Log)

			exts := cfg.Extract.Extensions
			if cmd.Flags().Changed("ext") {
				exts = extensions
			}

			summary, err := workspace.MergeFiles(cmd.Context(), workspace.MergeRequest{
				ProjectRoot:    project,
				Extensions:     exts,
				Destination:    out,
				IgnorePatterns: cfg.Extract.Ignore,
				FollowSymlinks: cfg.Extract.FollowSymlinks,
			}, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.stdout, "Merged %s lines from %s files into %s\n",
				formatNumber(summary.Lines), formatNumber(summary.Files), summary.Destination)
			for _, f := range summary.Failures {
				fmt.Fprintf(opts.stderr, "%s: %s: %s\n", f.SourceFile, f.Kind, f.Message)
			}
			if len(summary.Failures) > 0 {
				return &ExitError{Code: ExitFailure}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", ".", "Project root directory")
	cmd.Flags().StringSliceVarP(&extensions, "ext", "e", nil, "File extensions to include, comma separated (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <project>/merged.txt)")

	return cmd
}
