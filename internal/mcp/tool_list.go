package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	mcputils "github.com/mvp-joe/methodex/internal/mcp-utils"
)

const (
	defaultListLimit = 500
	maxListLimit     = 5000
)

// ListMethodsArgs are the arguments of the list_methods tool.
type ListMethodsArgs struct {
	Project    string   `json:"project"`
	Extensions []string `json:"extensions,omitempty"`
	File       string   `json:"file,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// MethodEntry is one method in a list_methods response.
type MethodEntry struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Language string `json:"language"`
}

// ListMethodsResponse is the list_methods result.
type ListMethodsResponse struct {
	JobID     string                   `json:"job_id"`
	Methods   []MethodEntry            `json:"methods"`
	Total     int                      `json:"total"`
	Truncated bool                     `json:"truncated"`
	Failures  []extraction.FileFailure `json:"failures"`
	Cancelled bool                     `json:"cancelled"`
}

// AddListMethodsTool registers the list_methods tool with an MCP server.
// It extracts without writing anything.
func AddListMethodsTool(s *server.MCPServer, extractor Extractor, config *ServerConfig) {
	tool := mcp.NewTool(
		"list_methods",
		mcp.WithDescription("List the method declarations of a project in declaration order, with file and line, without writing any file."),
		mcp.WithString("project",
			mcp.Description("Project root directory; relative paths resolve against the server's project. Defaults to the server's project.")),
		mcp.WithArray("extensions",
			mcp.Description("File extensions to include (e.g., ['java', 'py']). Defaults to the configured extensions.")),
		mcp.WithString("file",
			mcp.Description("Only list methods of files whose project-relative path contains this text")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum methods to return (1-5000, default: 500)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createListMethodsHandler(extractor, config))
}

func createListMethodsHandler(extractor Extractor, config *ServerConfig) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListMethodsArgs
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		root := config.resolveProject(args.Project)
		if root == "" {
			return mcp.NewToolResultError("project parameter is required"), nil
		}

		result, err := extractor.Extract(ctx, root, config.extensions(args.Extensions))
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		return marshalToolResponse(listResponse(result, args))
	}
}

func listResponse(result *extraction.Result, args ListMethodsArgs) *ListMethodsResponse {
	limit := args.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	resp := &ListMethodsResponse{
		JobID:     result.JobID,
		Methods:   []MethodEntry{},
		Failures:  result.Failures,
		Cancelled: result.Cancelled,
	}
	for _, rec := range result.Records {
		rel, err := filepath.Rel(result.ProjectRoot, rec.SourceFile)
		if err != nil {
			rel = rec.SourceFile
		}
		rel = filepath.ToSlash(rel)
		if args.File != "" && !strings.Contains(rel, args.File) {
			continue
		}

		resp.Total++
		if len(resp.Methods) >= limit {
			resp.Truncated = true
			continue
		}
		resp.Methods = append(resp.Methods, MethodEntry{
			Name:     rec.Name,
			File:     rel,
			Line:     rec.Line,
			Language: rec.Language,
		})
	}
	return resp
}
