// Package orchestrator runs project-level method extraction: validate the project,
// run the extraction job, persist the result, and report a summary.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mvp-joe/methodex/internal/extractor"
	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/mvp-joe/methodex/internal/extractor/parsers"
	"github.com/mvp-joe/methodex/internal/sink"
)

var (
	// ErrNoExtensions indicates an empty extension filter
	ErrNoExtensions = errors.New("no extensions given")

	// ErrUnsupportedExtension indicates an extension with no registered grammar
	ErrUnsupportedExtension = errors.New("unsupported extension")
)

// DefaultOutputName is the base name of the default destination.
const DefaultOutputName = "extracted_methods"

// DefaultDestination is where results go when no destination is given:
// <root>/extracted_methods.txt, or .db for the sqlite format.
func DefaultDestination(root string, format sink.Format) string {
	ext := ".txt"
	if format == sink.FormatSQLite {
		ext = ".db"
	}
	return filepath.Join(root, DefaultOutputName+ext)
}

// Request describes one extraction.
type Request struct {
	ProjectRoot string
	Extensions  []string
	Destination string
	Mode        sink.Mode
	Format      sink.Format
}

// Summary reports the outcome of an extraction, including partial failure.
type Summary struct {
	JobID           string                   `json:"job_id"`
	ProjectRoot     string                   `json:"project_root"`
	Destination     string                   `json:"destination"`
	FilesDiscovered int                      `json:"files_discovered"`
	FilesProcessed  int                      `json:"files_processed"`
	RecordCount     int                      `json:"record_count"`
	FailureCount    int                      `json:"failure_count"`
	Failures        []extraction.FileFailure `json:"failures"`
	Cancelled       bool                     `json:"cancelled"`
	Duration        time.Duration            `json:"duration_ns"`
}

// Succeeded reports whether every file was processed without failure.
func (s *Summary) Succeeded() bool {
	return s.FailureCount == 0 && !s.Cancelled
}

// Orchestrator wires an extraction job to a sink.
type Orchestrator struct {
	job      *extractor.Job
	registry *parsers.Registry
	logger   *slog.Logger
}

// New creates an orchestrator around job. A nil logger uses slog.Default().
func New(job *extractor.Job, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		job:      job,
		registry: parsers.DefaultRegistry(),
		logger:   logger,
	}
}

// ExtractMethods validates the project, extracts its methods and writes them to the
// request's destination. The destination is never touched when the project is invalid.
// A summary is returned whenever the job ran, even if writing then failed.
func (o *Orchestrator) ExtractMethods(ctx context.Context, req Request) (*Summary, error) {
	start := time.Now()

	project, err := o.project(req.ProjectRoot, req.Extensions)
	if err != nil {
		return nil, err
	}

	s, err := sink.New(req.Format)
	if err != nil {
		return nil, err
	}

	result, err := o.job.Run(ctx, project)
	if err != nil {
		return nil, err
	}

	summary := summarize(result, req.Destination)

	logger := o.logger.With(slog.String("job_id", result.JobID))
	logger.Info("extraction complete",
		slog.String("project", project.Root),
		slog.Int("files", result.FilesProcessed),
		slog.Int("records", summary.RecordCount),
		slog.Int("failures", summary.FailureCount),
		slog.Bool("cancelled", result.Cancelled))

	// Results of a cancelled job are still persisted.
	if err := s.Write(context.WithoutCancel(ctx), req.Destination, result, req.Mode); err != nil {
		logger.Error("write failed", slog.String("destination", req.Destination), slog.Any("error", err))
		summary.Duration = time.Since(start)
		return summary, err
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// Extract runs the job without writing anything.
func (o *Orchestrator) Extract(ctx context.Context, root string, extensions []string) (*extraction.Result, error) {
	project, err := o.project(root, extensions)
	if err != nil {
		return nil, err
	}
	return o.job.Run(ctx, project)
}

func (o *Orchestrator) project(root string, extensions []string) (extraction.Project, error) {
	project, err := extraction.NewProject(root, extensions)
	if err != nil {
		return extraction.Project{}, err
	}
	if len(project.Extensions) == 0 {
		return extraction.Project{}, ErrNoExtensions
	}
	for _, ext := range project.Extensions {
		if _, ok := o.registry.LanguageFor(ext); !ok {
			return extraction.Project{}, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedExtension, ext, strings.Join(o.registry.Extensions(), ", "))
		}
	}
	return project, nil
}

func summarize(result *extraction.Result, destination string) *Summary {
	return &Summary{
		JobID:           result.JobID,
		ProjectRoot:     result.ProjectRoot,
		Destination:     destination,
		FilesDiscovered: result.FilesDiscovered,
		FilesProcessed:  result.FilesProcessed,
		RecordCount:     len(result.Records),
		FailureCount:    len(result.Failures),
		Failures:        result.Failures,
		Cancelled:       result.Cancelled,
	}
}
