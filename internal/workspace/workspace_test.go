package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for workspace:
// - CopyProject copies files and directories into <data>/<name>, keeping permission bits
// - CopyProject recreates symlinks instead of following them
// - CopyProject overwrites files from an earlier copy
// - CopyProject rejects a missing source with InvalidProjectError
// - CopyProject skips a data directory nested inside the source
// - ListProjects lists visible directories only, sorted; a missing dir is empty
// - MergeFiles writes every line of every matching file with "\n", in discovery order
// - MergeFiles defaults to <project>/merged.txt and never merges its own output
// - MergeFiles rejects a missing project with InvalidProjectError

func writeFile(t *testing.T, root, rel, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCopyProject(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "shop")
	writeFile(t, src, "src/Main.java", "class Main {}", 0644)
	writeFile(t, src, "bin/run.sh", "#!/bin/sh\n", 0755)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0755))

	data := t.TempDir()
	stats, err := CopyProject(context.Background(), src, data)
	require.NoError(t, err)

	dest := filepath.Join(data, "shop")
	assert.Equal(t, dest, stats.Destination)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 4, stats.Dirs) // root, src, bin, empty
	assert.Equal(t, int64(len("class Main {}")+len("#!/bin/sh\n")), stats.Bytes)

	assert.Equal(t, "class Main {}", readFile(t, filepath.Join(dest, "src", "Main.java")))
	assert.DirExists(t, filepath.Join(dest, "empty"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dest, "bin", "run.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}
}

func TestCopyProject_Symlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	src := filepath.Join(t.TempDir(), "proj")
	writeFile(t, src, "A.java", "class A {}", 0644)
	require.NoError(t, os.Symlink("A.java", filepath.Join(src, "Alias.java")))

	data := t.TempDir()
	stats, err := CopyProject(context.Background(), src, data)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Symlinks)

	link, err := os.Readlink(filepath.Join(data, "proj", "Alias.java"))
	require.NoError(t, err)
	assert.Equal(t, "A.java", link)
}

func TestCopyProject_Overwrites(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "proj")
	file := writeFile(t, src, "A.java", "old", 0644)
	data := t.TempDir()

	_, err := CopyProject(context.Background(), src, data)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(file, []byte("new content"), 0644))
	_, err = CopyProject(context.Background(), src, data)
	require.NoError(t, err)

	assert.Equal(t, "new content", readFile(t, filepath.Join(data, "proj", "A.java")))
}

func TestCopyProject_MissingSource(t *testing.T) {
	t.Parallel()

	_, err := CopyProject(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())

	var invalid *extraction.InvalidProjectError
	assert.ErrorAs(t, err, &invalid)
}

func TestCopyProject_DataInsideSource(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "proj")
	writeFile(t, src, "A.java", "class A {}", 0644)
	data := filepath.Join(src, "data")

	stats, err := CopyProject(context.Background(), src, data)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(data, "proj"), stats.Destination)
	assert.FileExists(t, filepath.Join(data, "proj", "A.java"))
	assert.NoDirExists(t, filepath.Join(data, "proj", "data", "proj"))
}

func TestListProjects(t *testing.T) {
	t.Parallel()

	data := t.TempDir()
	for _, d := range []string{"zeta", "alpha", ".hidden"} {
		require.NoError(t, os.MkdirAll(filepath.Join(data, d), 0755))
	}
	writeFile(t, data, "file.txt", "", 0644)

	projects, err := ListProjects(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, projects)

	projects, err = ListProjects(filepath.Join(data, "missing"))
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestMergeFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "b/B.java", "class B {}\r\n// end", 0644)
	writeFile(t, root, "A.java", "class A {\n}\n", 0644)
	writeFile(t, root, "notes.md", "skip me\n", 0644)

	summary, err := MergeFiles(context.Background(), MergeRequest{ProjectRoot: root, Extensions: []string{"java"}}, nil)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(summary.Destination))
	assert.Equal(t, MergedFileName, filepath.Base(summary.Destination))
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 4, summary.Lines)
	assert.Empty(t, summary.Failures)

	assert.Equal(t, "class A {\n}\nclass B {}\n// end\n", readFile(t, summary.Destination))
}

func TestMergeFiles_SkipsOwnOutput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "one\n", 0644)
	writeFile(t, root, MergedFileName, "stale\n", 0644)

	summary, err := MergeFiles(context.Background(), MergeRequest{ProjectRoot: root, Extensions: []string{"txt"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, "one\n", readFile(t, summary.Destination))
}

func TestMergeFiles_ExplicitDestination(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "A.java", "class A {}", 0644)
	dest := filepath.Join(t.TempDir(), "all.txt")

	summary, err := MergeFiles(context.Background(), MergeRequest{ProjectRoot: root, Extensions: []string{"java"}, Destination: dest}, nil)
	require.NoError(t, err)

	assert.Equal(t, dest, summary.Destination)
	assert.Equal(t, "class A {}\n", readFile(t, dest))
}

func TestMergeFiles_MissingProject(t *testing.T) {
	t.Parallel()

	_, err := MergeFiles(context.Background(), MergeRequest{ProjectRoot: filepath.Join(t.TempDir(), "nope"), Extensions: []string{"java"}}, nil)

	var invalid *extraction.InvalidProjectError
	assert.ErrorAs(t, err, &invalid)
}
