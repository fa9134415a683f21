package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/methodex/internal/extractor"
	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/mvp-joe/methodex/internal/orchestrator"
	"github.com/mvp-joe/methodex/internal/sink"
)

// Test Plan for MCP tools:
// - NewServer registers both tools without panicking
// - extract_methods writes the default destination and returns the summary as JSON
// - extract_methods honours destination, mode and format arguments, including string-encoded ones
// - extract_methods returns a tool error for an invalid project, bad mode or unsupported extension
// - extract_methods propagates unexpected errors as protocol errors
// - list_methods returns records in order with relative paths, filtered by file, limited
// - list_methods writes nothing

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "a/A.java", `class A { void m1(){ class B { void m2(){} } } void m3(){} }`)
	writeFile(t, root, "b/C.java", `class C { void c1(){} }`)
	return root
}

func testConfig(root string) *ServerConfig {
	return &ServerConfig{
		ProjectRoot: root,
		Extensions:  []string{"java"},
		Mode:        sink.ModeTruncate,
		Format:      sink.FormatText,
	}
}

func realExtractor() Extractor {
	return orchestrator.New(extractor.NewJob(extractor.Config{}), nil)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return result, text.Text
}

// failingExtractor returns err from every call.
type failingExtractor struct{ err error }

func (f *failingExtractor) ExtractMethods(ctx context.Context, req orchestrator.Request) (*orchestrator.Summary, error) {
	return nil, f.err
}

func (f *failingExtractor) Extract(ctx context.Context, root string, extensions []string) (*extraction.Result, error) {
	return nil, f.err
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	s := NewServer(realExtractor(), testConfig(t.TempDir()), nil)
	require.NotNil(t, s)
	assert.NotNil(t, s.mcp)
}

func TestExtractMethods_DefaultDestination(t *testing.T) {
	t.Parallel()

	root := newTestProject(t)
	handler := createExtractMethodsHandler(realExtractor(), testConfig(root))

	result, text := callTool(t, handler, map[string]any{})
	require.False(t, result.IsError, text)

	var summary orchestrator.Summary
	require.NoError(t, json.Unmarshal([]byte(text), &summary))
	assert.Equal(t, 4, summary.RecordCount)
	assert.Equal(t, 2, summary.FilesProcessed)
	assert.Equal(t, filepath.Join(root, "extracted_methods.txt"), summary.Destination)

	data, err := os.ReadFile(summary.Destination)
	require.NoError(t, err)
	assert.Equal(t, "m1\nm2\nm3\nc1\n", string(data))
}

func TestExtractMethods_Arguments(t *testing.T) {
	t.Parallel()

	root := newTestProject(t)
	out := filepath.Join(t.TempDir(), "out.db")
	handler := createExtractMethodsHandler(realExtractor(), testConfig(t.TempDir()))

	args := map[string]any{
		"project":     root,
		"extensions":  `["java"]`,
		"destination": out,
		"format":      "sqlite",
		"mode":        "append",
	}
	result, text := callTool(t, handler, args)
	require.False(t, result.IsError, text)
	callTool(t, handler, args)

	names, err := sink.ReadMethodNames(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3", "c1", "m1", "m2", "m3", "c1"}, names)
}

func TestExtractMethods_RelativeProject(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeFile(t, base, "shop/Shop.java", `class Shop { void buy(){} }`)
	handler := createExtractMethodsHandler(realExtractor(), testConfig(base))

	result, text := callTool(t, handler, map[string]any{"project": "shop", "destination": "shop.txt"})
	require.False(t, result.IsError, text)

	data, err := os.ReadFile(filepath.Join(base, "shop.txt"))
	require.NoError(t, err)
	assert.Equal(t, "buy\n", string(data))
}

func TestExtractMethods_UserErrors(t *testing.T) {
	t.Parallel()

	root := newTestProject(t)
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing project", map[string]any{"project": filepath.Join(root, "missing")}, "does not exist"},
		{"bad mode", map[string]any{"mode": "replace"}, "mode"},
		{"bad format", map[string]any{"format": "csv"}, "format"},
		{"unsupported extension", map[string]any{"extensions": []any{"kt"}}, "unsupported extension"},
	}

	handler := createExtractMethodsHandler(realExtractor(), testConfig(root))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, text := callTool(t, handler, tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestExtractMethods_InternalError(t *testing.T) {
	t.Parallel()

	handler := createExtractMethodsHandler(&failingExtractor{err: errors.New("disk on fire")}, testConfig(t.TempDir()))
	_, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{}},
	})
	assert.EqualError(t, err, "disk on fire")
}

func TestListMethods(t *testing.T) {
	t.Parallel()

	root := newTestProject(t)
	handler := createListMethodsHandler(realExtractor(), testConfig(root))

	result, text := callTool(t, handler, map[string]any{})
	require.False(t, result.IsError, text)

	var resp ListMethodsResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, 4, resp.Total)
	assert.False(t, resp.Truncated)
	require.Len(t, resp.Methods, 4)
	assert.Equal(t, MethodEntry{Name: "m1", File: "a/A.java", Line: 1, Language: "java"}, resp.Methods[0])
	assert.Equal(t, "c1", resp.Methods[3].Name)

	_, err := os.Stat(filepath.Join(root, "extracted_methods.txt"))
	assert.True(t, os.IsNotExist(err), "list_methods must not write")
}

func TestListMethods_FilterAndLimit(t *testing.T) {
	t.Parallel()

	root := newTestProject(t)
	handler := createListMethodsHandler(realExtractor(), testConfig(root))

	_, text := callTool(t, handler, map[string]any{"file": "a/", "limit": "2"})
	var resp ListMethodsResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))

	assert.Equal(t, 3, resp.Total)
	assert.True(t, resp.Truncated)
	require.Len(t, resp.Methods, 2)
	assert.Equal(t, "m1", resp.Methods[0].Name)
	assert.Equal(t, "m2", resp.Methods[1].Name)
}

func TestListMethods_InvalidProject(t *testing.T) {
	t.Parallel()

	handler := createListMethodsHandler(realExtractor(), testConfig(t.TempDir()))
	result, text := callTool(t, handler, map[string]any{"project": "nope"})

	assert.True(t, result.IsError)
	assert.Contains(t, text, "does not exist")
}
