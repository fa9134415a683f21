package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

func newVersionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Methodex",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(opts.stdout, "Methodex %s\n", Version)
			fmt.Fprintf(opts.stdout, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(opts.stdout, "Build date: %s\n", BuildDate)
		},
	}
}
