package workspace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/methodex/internal/extractor"
	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// MergedFileName is the default merge output, written at the project root.
const MergedFileName = "merged.txt"

// MergeRequest describes one merge.
type MergeRequest struct {
	ProjectRoot    string
	Extensions     []string
	Destination    string // empty means <ProjectRoot>/merged.txt
	IgnorePatterns []string
	FollowSymlinks bool
}

// MergeSummary reports what MergeFiles wrote.
type MergeSummary struct {
	Destination string
	Files       int
	Lines       int
	Failures    []extraction.FileFailure
}

// MergeFiles concatenates every matching file of a project into one text file,
// line by line in discovery order. Each line is written with a trailing "\n"
// whatever its original terminator. Unreadable files are recorded and skipped.
func MergeFiles(ctx context.Context, req MergeRequest, logger *slog.Logger) (summary *MergeSummary, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	project, err := extraction.NewProject(req.ProjectRoot, req.Extensions)
	if err != nil {
		return nil, err
	}
	dest := req.Destination
	if dest == "" {
		dest = filepath.Join(project.Root, MergedFileName)
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}

	discovery, err := extractor.NewFileDiscovery(project, req.IgnorePatterns, req.FollowSymlinks)
	if err != nil {
		return nil, err
	}
	found, err := discovery.Discover()
	if err != nil {
		return nil, err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dest, cerr)
		}
	}()

	w := bufio.NewWriter(out)
	summary = &MergeSummary{Destination: dest, Failures: append([]extraction.FileFailure{}, found.Failures...)}

	for _, file := range found.Files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		// The output may itself match the extension filter.
		if file.Path == dest {
			continue
		}

		lines, err := appendLines(w, file.Path)
		summary.Lines += lines
		if err != nil {
			var rerr *extraction.FileReadError
			if !errors.As(err, &rerr) {
				return summary, err
			}
			logger.Warn("skipping unreadable file", slog.String("file", file.RelPath), slog.Any("error", err))
			summary.Failures = append(summary.Failures, extraction.FileFailure{
				SourceFile: file.Path,
				Kind:       extraction.KindFileRead,
				Message:    err.Error(),
			})
			continue
		}
		summary.Files++
	}

	if err := w.Flush(); err != nil {
		return summary, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return summary, nil
}

// appendLines copies the lines of path to w. Read errors are *extraction.FileReadError;
// anything else is a write error.
func appendLines(w *bufio.Writer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &extraction.FileReadError{Path: path, Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	lines := 0
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if _, werr := w.WriteString(line + "\n"); werr != nil {
				return lines, werr
			}
			lines++
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, &extraction.FileReadError{Path: path, Err: err}
		}
	}
}
