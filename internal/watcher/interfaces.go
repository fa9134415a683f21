package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing.
type FileWatcher interface {
	// Start begins watching, calling callback with each debounced batch of changed files.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}

// Runner re-runs extraction after a batch of changes.
type Runner interface {
	// Run re-extracts the project. changed lists the files that triggered the run.
	Run(ctx context.Context, changed []string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, changed []string) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, changed []string) error {
	return f(ctx, changed)
}
