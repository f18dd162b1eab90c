// Package calendar_tools provides MCP tools for the Outlook calendar:
// listing and searching events, creating appointments and answering
// meeting invitations.
//
// Event listings expand recurring series inside the requested window.
// Creating an event with attendees sends it as a meeting invitation.
package calendar_tools
