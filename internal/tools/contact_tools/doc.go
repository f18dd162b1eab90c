// Package contact_tools provides MCP tools for the Outlook contacts folder.
package contact_tools
