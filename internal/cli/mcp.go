package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/methodex/internal/extractor"
	mcpserver "github.com/mvp-joe/methodex/internal/mcp"
	"github.com/mvp-joe/methodex/internal/orchestrator"
	"github.com/mvp-joe/methodex/internal/sink"
)

func newMCPCommand(opts *globalOptions) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for method extraction",
		Long: `Start a Model Context Protocol server on stdio exposing two tools:

  extract_methods  extract a project's methods and write them to a file
  list_methods     extract a project's methods and return them directly

Relative project paths in tool calls resolve against --project, which is also
the default project. Extensions, mode and format default to the configuration.

Logs go to stderr so they never mix with the protocol on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				select {
				case <-sigChan:
					cancel()
				case <-ctx.Done():
				}
			}()

			cfg, err := opts.loadConfig(project)
			if err != nil {
				return err
			}
			logger := opts.newLogger(cfg.Log)

			mode, err := sink.ParseMode(cfg.Output.Mode)
			if err != nil {
				return err
			}
			format, err := sink.ParseFormat(cfg.Output.Format)
			if err != nil {
				return err
			}

			job := extractor.NewJob(extractor.Config{
				IgnorePatterns: cfg.Extract.Ignore,
				FollowSymlinks: cfg.Extract.FollowSymlinks,
				Workers:        cfg.Extract.Workers,
			}, extractor.WithLogger(logger))

			server := mcpserver.NewServer(orchestrator.New(job, logger), &mcpserver.ServerConfig{
				ProjectRoot: project,
				Extensions:  cfg.Extract.Extensions,
				Mode:        mode,
				Format:      format,
				Version:     Version,
			}, logger)

			if err := server.Serve(ctx); err != nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", ".", "Default project root for tool calls")
	return cmd
}
