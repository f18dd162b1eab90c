// Package logging provides structured logging utilities for outlook-mcp.
//
// It builds the process logger (text or JSON, stderr plus an optional
// rotated log file) and centralizes attribute naming so tool handlers, the
// Outlook client and the HTTP transport log consistently.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "send_email")
//	logger.Info("message sent",
//	    logging.Recipients(to),
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
//   - Recipient addresses are hashed, never logged verbatim
//   - Message bodies and BCC lists are never logged
package logging
