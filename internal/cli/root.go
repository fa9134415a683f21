package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/methodex/internal/config"
	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// Process exit codes.
const (
	ExitOK             = 0
	ExitFailure        = 1 // per-file failures, sink failure, cancellation, usage errors
	ExitInvalidProject = 2
)

// ExitError carries the exit code a command wants. A nil Err means the command
// already reported the problem and nothing more is printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// globalOptions are the persistent flags and output streams shared by commands.
type globalOptions struct {
	cfgFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

// NewRootCommand builds the methodex command tree writing to the given streams.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "methodex",
		Short: "Methodex - batch method declaration extractor",
		Long: `Methodex parses every source file of a project and records the name of each
method declaration, nested ones included, in declaration order.

Settings come from <project>/.methodex/config.yml, ~/.methodex/config.yml and
METHODEX_* environment variables; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is <project>/.methodex/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.AddCommand(
		newExtractCommand(opts),
		newShowCommand(opts),
		newMergeCommand(opts),
		newUploadCommand(opts),
		newProjectsCommand(opts),
		newMCPCommand(opts),
		newVersionCommand(opts),
	)
	return rootCmd
}

// Execute runs the CLI with the process arguments and returns the exit code.
// This is called by main.main().
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes args against a fresh command tree and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var invalid *extraction.InvalidProjectError
	if errors.As(err, &invalid) {
		return ExitInvalidProject
	}
	return ExitFailure
}

// loadConfig loads settings for the project at root, honouring --config.
func (o *globalOptions) loadConfig(root string) (*config.Config, error) {
	cfg, err := config.NewLoader(root, config.WithConfigFile(o.cfgFile)).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the log settings. --verbose forces debug.
func (o *globalOptions) newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if o.verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(o.stderr, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(o.stderr, handlerOpts))
}
