package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/methodex/internal/config"
	"github.com/mvp-joe/methodex/internal/extractor"
	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/mvp-joe/methodex/internal/orchestrator"
	"github.com/mvp-joe/methodex/internal/sink"
	"github.com/mvp-joe/methodex/internal/watcher"
)

type extractOptions struct {
	project    string
	extensions []string
	out        string
	appendMode bool
	truncate   bool
	workers    int
	format     string
	watch      bool
	quiet      bool
}

func newExtractCommand(opts *globalOptions) *cobra.Command {
	eo := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract method names from every source file of a project",
		Long: `Extract parses every file of the project whose extension matches --ext and
writes the name of each method declaration, one per line, to --out.

Files are processed in lexicographic order of their project-relative paths and
methods in declaration order, nested declarations included. A file that cannot
be read or parsed is reported and skipped; the rest of the batch continues.

Exit codes:
  0  every file was processed
  1  some files failed, the output could not be written, or the run was interrupted
  2  the project path does not exist or is not a directory

Examples:
  # Extract Java methods into <project>/extracted_methods.txt
  methodex extract --project ./shop --ext java

  # Append to an existing list
  methodex extract --project ./shop --ext java --out methods.txt --append

  # Re-extract whenever a source file changes
  methodex extract --project ./shop --ext java,py --watch
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, eo)
		},
	}

	cmd.Flags().StringVarP(&eo.project, "project", "p", ".", "Project root directory")
	cmd.Flags().StringSliceVarP(&eo.extensions, "ext", "e", nil, "File extensions to include, comma separated (default from config)")
	cmd.Flags().StringVarP(&eo.out, "out", "o", "", "Output file (default <project>/extracted_methods.txt)")
	cmd.Flags().BoolVar(&eo.appendMode, "append", false, "Append to the output file")
	cmd.Flags().BoolVar(&eo.truncate, "truncate", false, "Overwrite the output file")
	cmd.Flags().IntVarP(&eo.workers, "workers", "j", 0, "Parse files in parallel with this many workers (default from config)")
	cmd.Flags().StringVar(&eo.format, "format", "", "Output format: text or sqlite (default from config)")
	cmd.Flags().BoolVarP(&eo.watch, "watch", "w", false, "Watch for file changes and re-extract")
	cmd.Flags().BoolVarP(&eo.quiet, "quiet", "q", false, "Disable progress output")
	cmd.MarkFlagsMutuallyExclusive("append", "truncate")

	return cmd
}

func runExtract(cmd *cobra.Command, opts *globalOptions, eo *extractOptions) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(opts.stderr, "\nInterrupted! Finishing files in progress...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := opts.loadConfig(eo.project)
	if err != nil {
		return err
	}
	logger := opts.newLogger(cfg.Log)

	req, err := eo.request(cmd, cfg)
	if err != nil {
		return err
	}
	if eo.watch && req.Mode != sink.ModeTruncate {
		return fmt.Errorf("--watch rewrites the output on every change and needs truncate mode")
	}

	workers := cfg.Extract.Workers
	if cmd.Flags().Changed("workers") {
		workers = eo.workers
	}

	jobOpts := []extractor.Option{
		extractor.WithProgress(NewCLIProgressReporter(opts.stderr, eo.quiet)),
		extractor.WithLogger(logger),
	}
	var cache *extractor.RecordCache
	if eo.watch {
		cache, err = extractor.NewRecordCache(extractor.DefaultCacheCapacity)
		if err != nil {
			return err
		}
		defer cache.Close()
		jobOpts = append(jobOpts, extractor.WithCache(cache))
	}

	jobConfig := extractor.Config{
		IgnorePatterns: cfg.Extract.Ignore,
		FollowSymlinks: cfg.Extract.FollowSymlinks,
		Workers:        workers,
	}
	orch := orchestrator.New(extractor.NewJob(jobConfig, jobOpts...), logger)

	summary, err := orch.ExtractMethods(ctx, req)
	if err := reportSummary(opts.stdout, opts.stderr, summary, err); err != nil {
		// A watch keeps going after per-file failures but not after an invalid request.
		if !eo.watch || summary == nil {
			return err
		}
	}
	if !eo.watch {
		return nil
	}

	return watchAndExtract(ctx, opts, cfg, jobConfig, req, orch, cache, logger)
}

// request resolves flags against config into an orchestrator request.
func (eo *extractOptions) request(cmd *cobra.Command, cfg *config.Config) (orchestrator.Request, error) {
	req := orchestrator.Request{
		ProjectRoot: eo.project,
		Extensions:  cfg.Extract.Extensions,
		Destination: eo.out,
	}
	if cmd.Flags().Changed("ext") {
		req.Extensions = eo.extensions
	}

	switch {
	case eo.appendMode:
		req.Mode = sink.ModeAppend
	case eo.truncate:
		req.Mode = sink.ModeTruncate
	default:
		mode, err := sink.ParseMode(cfg.Output.Mode)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}

	formatName := cfg.Output.Format
	if eo.format != "" {
		formatName = eo.format
	}
	format, err := sink.ParseFormat(formatName)
	if err != nil {
		return req, err
	}
	req.Format = format

	if req.Destination == "" {
		req.Destination = orchestrator.DefaultDestination(eo.project, format)
	}
	return req, nil
}

// reportSummary prints the summary to stdout and every failure to stderr, and
// returns the error that decides the exit code.
func reportSummary(stdout, stderr io.Writer, summary *orchestrator.Summary, runErr error) error {
	if summary == nil {
		var invalid *extraction.InvalidProjectError
		if errors.As(runErr, &invalid) {
			return &ExitError{Code: ExitInvalidProject, Err: runErr}
		}
		return runErr
	}

	fmt.Fprintf(stdout, "Files processed:   %s of %s\n", formatNumber(summary.FilesProcessed), formatNumber(summary.FilesDiscovered))
	fmt.Fprintf(stdout, "Records extracted: %s\n", formatNumber(summary.RecordCount))
	fmt.Fprintf(stdout, "Failures:          %s\n", formatNumber(summary.FailureCount))
	if runErr == nil {
		fmt.Fprintf(stdout, "Output:            %s\n", summary.Destination)
	}

	for _, f := range summary.Failures {
		fmt.Fprintf(stderr, "%s: %s: %s\n", f.SourceFile, f.Kind, f.Message)
	}

	switch {
	case runErr != nil:
		return &ExitError{Code: ExitFailure, Err: runErr}
	case summary.Cancelled:
		fmt.Fprintln(stderr, "Extraction cancelled before all files were processed")
		return &ExitError{Code: ExitFailure}
	case summary.FailureCount > 0:
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

// watchAndExtract re-runs extraction after debounced changes until ctx is cancelled.
func watchAndExtract(
	ctx context.Context,
	opts *globalOptions,
	cfg *config.Config,
	jobConfig extractor.Config,
	req orchestrator.Request,
	orch *orchestrator.Orchestrator,
	cache *extractor.RecordCache,
	logger *slog.Logger,
) error {
	project, err := extraction.NewProject(req.ProjectRoot, req.Extensions)
	if err != nil {
		return err
	}
	discovery, err := extractor.NewFileDiscovery(project, jobConfig.IgnorePatterns, jobConfig.FollowSymlinks)
	if err != nil {
		return err
	}
	destination, err := filepath.Abs(req.Destination)
	if err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher([]string{project.Root}, project.Extensions,
		watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
		watcher.WithIgnore(func(path string) bool {
			return path == destination || discovery.Ignored(path)
		}),
		watcher.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	runner := watcher.RunnerFunc(func(ctx context.Context, changed []string) error {
		cache.Invalidate(changed...)
		logger.Debug("re-extracting after changes",
			slog.Int("changed", len(changed)),
			slog.Int("cached_files", cache.Len()))
		summary, err := orch.ExtractMethods(ctx, req)
		// Per-file failures are already listed; only hard errors reach the coordinator.
		if rerr := reportSummary(opts.stdout, opts.stderr, summary, err); rerr != nil && err != nil {
			return rerr
		}
		return nil
	})

	fmt.Fprintf(opts.stderr, "Watching %s for changes (Ctrl+C to stop)...\n", project.Root)
	return watcher.NewCoordinator(fw, runner, logger).Start(ctx)
}
