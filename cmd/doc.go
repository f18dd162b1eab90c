// Package cmd implements the command-line interface for outlook-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server on stdio or streamable HTTP
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - config: Write or print the configuration file
//
// serve is the default command when no subcommand is specified.
package cmd
