// Package mail_tools provides MCP tools for reading, searching and sending
// Outlook mail and for handling attachments.
//
// Listings return at most 50 messages. Bodies are cut to a 500 character
// preview; body_length carries the real size.
package mail_tools
