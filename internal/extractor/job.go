package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/mvp-joe/methodex/internal/extractor/parsers"
)

// Config controls how a Job discovers and processes files.
type Config struct {
	IgnorePatterns []string
	FollowSymlinks bool
	// Workers > 1 parses files in parallel; output order is unchanged.
	Workers int
}

// Job extracts method records from every matching file of a project.
type Job struct {
	config   Config
	registry *parsers.Registry
	cache    *RecordCache
	progress ProgressReporter
	logger   *slog.Logger
}

// Option configures a Job.
type Option func(*Job)

// WithCache reuses records of unchanged files across runs.
func WithCache(c *RecordCache) Option {
	return func(j *Job) { j.cache = c }
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(j *Job) { j.progress = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(j *Job) { j.logger = l }
}

// NewJob creates a job.
func NewJob(cfg Config, opts ...Option) *Job {
	j := &Job{
		config:   cfg,
		registry: parsers.DefaultRegistry(),
		progress: &NoOpProgressReporter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// fileOutcome is what processing one file produced.
type fileOutcome struct {
	records []extraction.MethodRecord
	failure *extraction.FileFailure
}

// Run discovers and processes the project's files in lexicographic order of their
// relative paths. Per-file read and parse failures are recorded in the result and
// never stop the batch. Cancellation is checked between files: files already done
// stay in the result, the rest are simply absent and Result.Cancelled is set.
//
// Only an invalid project or an unreadable root is returned as an error.
func (j *Job) Run(ctx context.Context, project extraction.Project) (*extraction.Result, error) {
	if err := extraction.ValidateRoot(project.Root); err != nil {
		return nil, err
	}

	discovery, err := NewFileDiscovery(project, j.config.IgnorePatterns, j.config.FollowSymlinks)
	if err != nil {
		return nil, err
	}
	found, err := discovery.Discover()
	if err != nil {
		return nil, err
	}

	result := extraction.NewResult(uuid.NewString(), project.Root)
	result.FilesDiscovered = len(found.Files)
	for _, f := range found.Failures {
		j.logger.Warn("skipping unreadable directory", slog.String("dir", f.SourceFile), slog.String("error", f.Message))
		result.Failures = append(result.Failures, f)
	}

	j.progress.OnDiscoveryComplete(len(found.Files))
	j.progress.OnFileProcessingStart(len(found.Files))

	var cancelled bool
	if j.config.Workers > 1 {
		cancelled, err = j.runParallel(ctx, found.Files, result)
	} else {
		cancelled, err = j.runSequential(ctx, found.Files, result)
	}
	result.Close(cancelled)
	if err != nil {
		return result, err
	}

	j.progress.OnComplete(result)
	j.logger.Debug("extraction finished",
		slog.String("job_id", result.JobID),
		slog.String("root", project.Root),
		slog.Int("files", result.FilesProcessed),
		slog.Int("records", len(result.Records)),
		slog.Int("failures", len(result.Failures)),
		slog.Bool("cancelled", cancelled))

	return result, nil
}

func (j *Job) runSequential(ctx context.Context, files []extraction.SourceFile, result *extraction.Result) (bool, error) {
	for _, file := range files {
		if ctx.Err() != nil {
			return true, nil
		}
		if err := j.apply(result, j.processFile(ctx, file)); err != nil {
			return false, err
		}
		j.progress.OnFileProcessed(file.RelPath)
	}
	return false, nil
}

// runParallel launches files in order, so the processed set is always a prefix of
// files. Outcomes are buffered by index and merged in order after every worker ends.
func (j *Job) runParallel(ctx context.Context, files []extraction.SourceFile, result *extraction.Result) (bool, error) {
	outcomes := make([]*fileOutcome, len(files))

	g := new(errgroup.Group)
	g.SetLimit(j.config.Workers)

	launched := 0
	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = j.processFile(ctx, file)
			j.progress.OnFileProcessed(file.RelPath)
			return nil
		})
		launched++
	}
	_ = g.Wait()

	for _, outcome := range outcomes[:launched] {
		if err := j.apply(result, outcome); err != nil {
			return false, err
		}
	}
	return launched < len(files), nil
}

func (j *Job) apply(result *extraction.Result, outcome *fileOutcome) error {
	if outcome.failure != nil {
		return result.AddFailure(*outcome.failure)
	}
	return result.AppendFile(outcome.records)
}

// processFile reads, parses and visits one file. It never returns an error:
// failures are folded into the outcome.
func (j *Job) processFile(ctx context.Context, file extraction.SourceFile) *fileOutcome {
	logger := j.logger.With(slog.String("file", file.RelPath))

	lang, ok := j.registry.LanguageFor(filepath.Ext(file.Path))
	if !ok {
		return failed(file, extraction.KindParse, fmt.Sprintf("no grammar for extension %q", filepath.Ext(file.Path)), logger)
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return failed(file, extraction.KindFileRead, (&extraction.FileReadError{Path: file.Path, Err: err}).Error(), logger)
	}

	if j.cache != nil {
		if records, ok := j.cache.Get(file.Path, info); ok {
			logger.Debug("record cache hit", slog.Int("records", len(records)))
			return &fileOutcome{records: records}
		}
	}

	source, err := os.ReadFile(file.Path)
	if err != nil {
		return failed(file, extraction.KindFileRead, (&extraction.FileReadError{Path: file.Path, Err: err}).Error(), logger)
	}

	// A started file always finishes; cancellation only stops files from starting.
	tree, err := parsers.NewParser(lang).Parse(context.WithoutCancel(ctx), source)
	if err != nil {
		var perr *parsers.ParseError
		if errors.As(err, &perr) {
			return failed(file, extraction.KindParse, perr.Error(), logger)
		}
		return failed(file, extraction.KindParse, err.Error(), logger)
	}
	defer tree.Close()

	records := parsers.Visit(tree, file.Path)
	if j.cache != nil {
		j.cache.Set(file.Path, info, records)
	}

	logger.Debug("file extracted", slog.Int("records", len(records)))
	return &fileOutcome{records: records}
}

func failed(file extraction.SourceFile, kind extraction.ErrorKind, msg string, logger *slog.Logger) *fileOutcome {
	logger.Warn("file skipped", slog.String("kind", string(kind)), slog.String("error", msg))
	return &fileOutcome{failure: &extraction.FileFailure{
		SourceFile: file.Path,
		Kind:       kind,
		Message:    msg,
	}}
}
