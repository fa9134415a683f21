// Package workspace manages the data directory that holds uploaded projects,
// and builds derived files such as merged sources.
package workspace

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// CopyStats counts what CopyProject wrote.
type CopyStats struct {
	Destination string
	Dirs        int
	Files       int
	Symlinks    int
	Bytes       int64
}

// CopyProject copies the project tree at src into <dataDir>/<base name of src>,
// preserving structure and permission bits. Existing files are overwritten.
// Symlinks are recreated, not followed. If dataDir lies inside src the copy
// skips it rather than copying into itself.
func CopyProject(ctx context.Context, src, dataDir string) (*CopyStats, error) {
	if err := extraction.ValidateRoot(src); err != nil {
		return nil, err
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source: %w", err)
	}
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	dest := filepath.Join(dataDir, filepath.Base(src))
	if dest == src {
		return nil, fmt.Errorf("source %s is already in data directory %s", src, dataDir)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	stats := &CopyStats{Destination: dest}
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() && path == dest {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()|0700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			stats.Dirs++

		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("failed to read link %s: %w", path, err)
			}
			_ = os.Remove(target)
			if err := os.Symlink(link, target); err != nil {
				return fmt.Errorf("failed to create link %s: %w", target, err)
			}
			stats.Symlinks++

		case info.Mode().IsRegular():
			n, err := copyFile(path, target, info.Mode().Perm())
			if err != nil {
				return err
			}
			stats.Files++
			stats.Bytes += n
		}
		// Sockets, devices and pipes are not project content.
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("copy %s to %s: %w", src, dest, err)
	}

	// Directory modes are applied after their contents so read-only dirs still fill.
	if err := restoreDirModes(src, dest); err != nil {
		return stats, err
	}
	return stats, nil
}

func copyFile(src, dst string, perm fs.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("failed to write file %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("failed to close file %s: %w", dst, err)
	}
	// OpenFile leaves the mode of an existing file alone.
	return n, os.Chmod(dst, perm)
}

func restoreDirModes(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if path == dest {
			return filepath.SkipDir
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return os.Chmod(filepath.Join(dest, rel), info.Mode().Perm())
	})
}

// ListProjects returns the names of the visible project directories in dataDir,
// sorted. A missing data directory has no projects.
func ListProjects(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	projects := []string{}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			projects = append(projects, e.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}
