package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/methodex/internal/sink"
)

func newShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <database>",
		Short: "Print the method names stored by extract --format sqlite",
		Long: `Show prints every method name stored in a database written by
"extract --format sqlite", one per line in the order they were extracted.
The output matches what the text format would have written.

Example:
  methodex extract --project ./shop --ext java --format sqlite
  methodex show ./shop/extracted_methods.db > methods.txt
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := sink.ReadMethodNames(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := bufio.NewWriter(opts.stdout)
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			return w.Flush()
		},
	}
}
