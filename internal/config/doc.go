// Package config loads server settings from a YAML file, OUTLOOK_MCP_*
// environment variables and command-line flags, in increasing order of
// precedence.
package config
