package extraction

import (
	"os"
	"path/filepath"
	"strings"
)

// Project is a root directory plus the extensions that select its source files.
// Values are immutable once built by NewProject.
type Project struct {
	Root       string
	Extensions []string
}

// NewProject validates root and normalises the extension filter.
// Extensions are lowercased and stored without a leading dot.
func NewProject(root string, extensions []string) (Project, error) {
	if err := ValidateRoot(root); err != nil {
		return Project{}, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Project{}, &InvalidProjectError{Root: root, Reason: err.Error()}
	}

	return Project{
		Root:       absRoot,
		Extensions: NormalizeExtensions(extensions),
	}, nil
}

// ValidateRoot checks that root exists and is a directory.
func ValidateRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return &InvalidProjectError{Root: root, Reason: "project root is empty"}
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return &InvalidProjectError{Root: root, Reason: "does not exist"}
		}
		return &InvalidProjectError{Root: root, Reason: err.Error()}
	}
	if !info.IsDir() {
		return &InvalidProjectError{Root: root, Reason: "not a directory"}
	}
	return nil
}

// NormalizeExtensions lowercases, strips leading dots, drops blanks and duplicates.
// Order of first appearance is kept.
func NormalizeExtensions(extensions []string) []string {
	seen := make(map[string]bool, len(extensions))
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

// Matches reports whether path has one of the project's extensions (case-insensitive).
func (p Project) Matches(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, want := range p.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// SourceFile is a file discovered under a project root.
type SourceFile struct {
	Path    string // absolute path, the file's identity
	RelPath string // slash-separated, relative to the project root
}

// MethodRecord is one method declaration found in a source file.
type MethodRecord struct {
	Name          string `json:"name"`
	SourceFile    string `json:"source_file"`
	DeclaredOrder int    `json:"declared_order"` // 0-based pre-order index within the file
	Line          int    `json:"line"`
	Language      string `json:"language"`
}

// ErrorKind classifies a per-file failure.
type ErrorKind string

const (
	KindParse    ErrorKind = "parse_error"
	KindFileRead ErrorKind = "file_read_error"
)

// FileFailure records why a single file produced no records.
type FileFailure struct {
	SourceFile string    `json:"source_file"`
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
}
