package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds the source files of a project.
type FileDiscovery struct {
	project        extraction.Project
	ignorePatterns []compiledPattern
	followSymlinks bool
}

// DiscoveryResult is the sorted file list plus directories that could not be read.
type DiscoveryResult struct {
	Files    []extraction.SourceFile
	Failures []extraction.FileFailure
}

// NewFileDiscovery creates a file discovery for project. ignorePatterns are globs
// matched against slash-separated paths relative to the project root.
func NewFileDiscovery(project extraction.Project, ignorePatterns []string, followSymlinks bool) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		project:        project,
		followSymlinks: followSymlinks,
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return fd, nil
}

type candidate struct {
	file     extraction.SourceFile
	realPath string
}

// Discover walks the project and returns matching files sorted by relative path.
// Symlinked directories are followed once per real path, so link cycles terminate.
// Files reachable through several links are kept once, under the smallest relative path.
func (fd *FileDiscovery) Discover() (*DiscoveryResult, error) {
	rootReal, err := filepath.EvalSymlinks(fd.project.Root)
	if err != nil {
		return nil, &extraction.InvalidProjectError{Root: fd.project.Root, Reason: err.Error()}
	}
	if _, err := os.ReadDir(rootReal); err != nil {
		return nil, fmt.Errorf("read project root: %w", err)
	}

	w := &walker{
		fd:      fd,
		visited: map[string]bool{rootReal: true},
		result:  &DiscoveryResult{Files: []extraction.SourceFile{}, Failures: []extraction.FileFailure{}},
	}
	w.walkDir(fd.project.Root, "")

	sort.Slice(w.candidates, func(i, j int) bool {
		return w.candidates[i].file.RelPath < w.candidates[j].file.RelPath
	})

	seen := make(map[string]bool, len(w.candidates))
	for _, c := range w.candidates {
		if seen[c.realPath] {
			continue
		}
		seen[c.realPath] = true
		w.result.Files = append(w.result.Files, c.file)
	}

	return w.result, nil
}

type walker struct {
	fd         *FileDiscovery
	visited    map[string]bool
	candidates []candidate
	result     *DiscoveryResult
}

func (w *walker) walkDir(dir, relDir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.result.Failures = append(w.result.Failures, extraction.FileFailure{
			SourceFile: dir,
			Kind:       extraction.KindFileRead,
			Message:    err.Error(),
		})
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		relPath := entry.Name()
		if relDir != "" {
			relPath = relDir + "/" + entry.Name()
		}

		if w.fd.shouldIgnore(relPath) {
			continue
		}

		isDir := entry.IsDir()
		isRegular := entry.Type().IsRegular()

		if entry.Type()&os.ModeSymlink != 0 {
			if !w.fd.followSymlinks {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				// Dangling link.
				continue
			}
			isDir = info.IsDir()
			isRegular = info.Mode().IsRegular()
		}

		if isDir {
			realDir, err := filepath.EvalSymlinks(path)
			if err != nil || w.visited[realDir] {
				continue
			}
			w.visited[realDir] = true
			w.walkDir(path, relPath)
			continue
		}

		if !isRegular || !w.fd.project.Matches(entry.Name()) {
			continue
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			realPath = path
		}
		w.candidates = append(w.candidates, candidate{
			file:     extraction.SourceFile{Path: path, RelPath: relPath},
			realPath: realPath,
		})
	}
}

// Ignored reports whether an absolute path inside the project matches an ignore
// pattern. Paths outside the project are never ignored.
func (fd *FileDiscovery) Ignored(path string) bool {
	rel, err := filepath.Rel(fd.project.Root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return fd.shouldIgnore(filepath.ToSlash(rel))
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if fd.matchesAny(relPath) {
		return true
	}

	// A directory "node_modules" should match pattern "node_modules/**".
	if fd.matchesAny(relPath + "/**") {
		return true
	}

	// Root-level entries also match "**/x" patterns.
	if !strings.Contains(relPath, "/") {
		for _, cp := range fd.ignorePatterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(relPath) {
					return true
				}
			}
		}
	}
	return false
}

func (fd *FileDiscovery) matchesAny(path string) bool {
	for _, cp := range fd.ignorePatterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	return false
}
