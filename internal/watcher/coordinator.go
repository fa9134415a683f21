package watcher

import (
	"context"
	"log/slog"
)

// Coordinator re-runs extraction whenever the file watcher delivers a batch.
type Coordinator struct {
	files  FileWatcher
	runner Runner
	logger *slog.Logger
}

// NewCoordinator creates a coordinator. A nil logger uses slog.Default().
func NewCoordinator(files FileWatcher, runner Runner, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{files: files, runner: runner, logger: logger}
}

// Start watches until ctx is cancelled, then stops the watcher.
// Runs are sequential: a batch is never handled while another is running.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.files.Start(ctx, func(files []string) { c.handleFileChange(ctx, files) }); err != nil {
		return err
	}

	<-ctx.Done()
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", slog.Any("error", err))
	}
	return nil
}

func (c *Coordinator) handleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 || ctx.Err() != nil {
		return
	}

	c.logger.Info("re-extracting after changes", slog.Int("changed", len(files)))
	if err := c.runner.Run(ctx, files); err != nil {
		// The next batch retries; a failed run never stops watching.
		c.logger.Error("re-extraction failed", slog.Any("error", err))
	}
}
