package calendar_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/server"
)

// RegisterCalendarTools registers all calendar tools with the MCP server.
// Tools that create events or answer invitations are skipped in read-only
// mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	if err := RegisterMeetingTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register meeting tools: %w", err)
	}

	return nil
}
