// Package folder_tools provides MCP tools for discovering Outlook folders
// and client rules, and for dropping the folder lookup cache.
package folder_tools
