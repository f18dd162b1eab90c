// Package settings_tools provides MCP tools for mailbox settings, currently
// the automatic out-of-office reply.
//
// Only the on/off state is a standard store property. Schedule, reply texts
// and audience are exposed when the server is configured with the property
// names the mail server uses (see outlook.AutoReplyProperties); otherwise
// they read as null and writing them fails with an unsupported error.
package settings_tools
