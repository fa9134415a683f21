package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcputils "github.com/mvp-joe/methodex/internal/mcp-utils"
	"github.com/mvp-joe/methodex/internal/orchestrator"
	"github.com/mvp-joe/methodex/internal/sink"
)

// ExtractMethodsArgs are the arguments of the extract_methods tool.
type ExtractMethodsArgs struct {
	Project     string   `json:"project"`
	Extensions  []string `json:"extensions,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Format      string   `json:"format,omitempty"`
}

// AddExtractMethodsTool registers the extract_methods tool with an MCP server.
func AddExtractMethodsTool(s *server.MCPServer, extractor Extractor, config *ServerConfig) {
	tool := mcp.NewTool(
		"extract_methods",
		mcp.WithDescription("Extract every method declaration of a project, nested ones included, and write the names to a destination file (one name per line). Returns a summary with per-file failures."),
		mcp.WithString("project",
			mcp.Description("Project root directory; relative paths resolve against the server's project. Defaults to the server's project.")),
		mcp.WithArray("extensions",
			mcp.Description("File extensions to include (e.g., ['java']). Defaults to the configured extensions.")),
		mcp.WithString("destination",
			mcp.Description("Output file. Defaults to <project>/extracted_methods.txt (.db for sqlite).")),
		mcp.WithString("mode",
			mcp.Description("truncate (default from config) or append")),
		mcp.WithString("format",
			mcp.Description("text (default from config) or sqlite")),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(tool, createExtractMethodsHandler(extractor, config))
}

func createExtractMethodsHandler(extractor Extractor, config *ServerConfig) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if raw := request.GetRawArguments(); raw != nil {
			if _, ok := raw.(map[string]any); !ok {
				return mcp.NewToolResultError("invalid arguments format"), nil
			}
		}

		var args ExtractMethodsArgs
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		req, err := buildRequest(args, config)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		summary, err := extractor.ExtractMethods(ctx, req)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		return marshalToolResponse(summary)
	}
}

func buildRequest(args ExtractMethodsArgs, config *ServerConfig) (orchestrator.Request, error) {
	req := orchestrator.Request{
		ProjectRoot: config.resolveProject(args.Project),
		Extensions:  config.extensions(args.Extensions),
		Destination: args.Destination,
		Mode:        config.Mode,
		Format:      config.Format,
	}
	if req.ProjectRoot == "" {
		return req, fmt.Errorf("project parameter is required")
	}

	if args.Mode != "" {
		mode, err := sink.ParseMode(args.Mode)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}
	if args.Format != "" {
		format, err := sink.ParseFormat(args.Format)
		if err != nil {
			return req, err
		}
		req.Format = format
	}
	if req.Mode == "" {
		req.Mode = sink.ModeTruncate
	}

	if req.Destination == "" {
		req.Destination = orchestrator.DefaultDestination(req.ProjectRoot, req.Format)
	} else {
		req.Destination = config.resolveProject(req.Destination)
	}
	return req, nil
}
