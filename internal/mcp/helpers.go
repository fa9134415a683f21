package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/mvp-joe/methodex/internal/orchestrator"
	"github.com/mvp-joe/methodex/internal/sink"
)

// marshalToolResponse marshals a response to JSON and wraps it in a text result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// isUserError reports whether err is caused by the caller's arguments and
// should be returned to the client as a tool error rather than a protocol error.
func isUserError(err error) bool {
	var invalid *extraction.InvalidProjectError
	var write *sink.SinkWriteError
	return errors.As(err, &invalid) ||
		errors.As(err, &write) ||
		errors.Is(err, orchestrator.ErrNoExtensions) ||
		errors.Is(err, orchestrator.ErrUnsupportedExtension)
}
