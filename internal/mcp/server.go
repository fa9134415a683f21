package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/mvp-joe/methodex/internal/orchestrator"
	"github.com/mvp-joe/methodex/internal/sink"
)

// Extractor is the orchestrator surface the tools use.
type Extractor interface {
	ExtractMethods(ctx context.Context, req orchestrator.Request) (*orchestrator.Summary, error)
	Extract(ctx context.Context, root string, extensions []string) (*extraction.Result, error)
}

// ServerConfig holds the defaults applied when a tool call omits an argument.
type ServerConfig struct {
	// ProjectRoot resolves relative project paths and is the default project.
	ProjectRoot string
	Extensions  []string
	Mode        sink.Mode
	Format      sink.Format
	Version     string
}

// Server serves the methodex tools over MCP stdio.
type Server struct {
	config *ServerConfig
	mcp    *server.MCPServer
	logger *slog.Logger
}

// NewServer creates a server exposing extract_methods and list_methods.
func NewServer(extractor Extractor, config *ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	version := config.Version
	if version == "" {
		version = "dev"
	}

	mcpServer := server.NewMCPServer(
		"methodex",
		version,
		server.WithToolCapabilities(true),
	)

	AddExtractMethodsTool(mcpServer, extractor, config)
	AddListMethodsTool(mcpServer, extractor, config)

	return &Server{config: config, mcp: mcpServer, logger: logger}
}

// Serve runs the stdio transport until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio", slog.String("project", s.config.ProjectRoot))
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("stopping MCP server")
		return nil
	}
}

// resolveProject maps a tool's project argument to an absolute path.
func (c *ServerConfig) resolveProject(project string) string {
	if project == "" {
		return c.ProjectRoot
	}
	if filepath.IsAbs(project) || c.ProjectRoot == "" {
		return project
	}
	return filepath.Join(c.ProjectRoot, project)
}

func (c *ServerConfig) extensions(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return c.Extensions
}
