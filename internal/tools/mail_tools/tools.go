package mail_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/server"
)

// RegisterMailTools registers all mail tools with the MCP server. Sending
// and saving tools are skipped in read-only mode.
func RegisterMailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEmailTools(s, sc); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	if err := RegisterAttachmentTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register attachment tools: %w", err)
	}

	if !readOnly {
		if err := RegisterSendTools(s, sc); err != nil {
			return fmt.Errorf("failed to register send tools: %w", err)
		}
	}

	return nil
}
