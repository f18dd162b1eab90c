// Package tooltest drives tool handlers against the in-memory Outlook fake.
package tooltest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/outlook/outlooktest"
	"github.com/teemow/outlook-mcp/internal/server"
)

// Now is the fixed clock used by NewServerContext.
var Now = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.Local)

// NewServerContext returns a server context whose client talks to fake.
func NewServerContext(t *testing.T, fake *outlooktest.Outlook, opts ...func(*outlook.Options)) *server.ServerContext {
	t.Helper()
	o := outlook.Options{Now: func() time.Time { return Now }}
	for _, fn := range opts {
		fn(&o)
	}
	sc, err := server.NewServerContext(context.Background(), outlook.NewClient(fake.Connector(), o))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// Request builds a tool call request.
func Request(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// Call runs handler and decodes the JSON envelope it returns.
func Call(t *testing.T, handler mcpserver.ToolHandlerFunc, name string, args map[string]any) (map[string]any, *mcp.CallToolResult) {
	t.Helper()
	result, err := handler(context.Background(), Request(name, args))
	require.NoError(t, err)
	require.NotNil(t, result)
	return Decode(t, result), result
}

// Decode parses the envelope in a tool result.
func Decode(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &env))
	return env
}

// Tools lists the tool names registered on s.
func Tools(s *mcpserver.MCPServer) []string {
	var names []string
	for name := range s.ListTools() {
		names = append(names, name)
	}
	return names
}

// Handler returns the handler registered for name.
func Handler(t *testing.T, s *mcpserver.MCPServer, name string) mcpserver.ToolHandlerFunc {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %s not registered", name)
	return tool.Handler
}
