// Package server provides the MCP server context, health checks, session
// management and the streamable HTTP transport for outlook-mcp.
//
// # Key Components
//
// ServerContext carries the shared Outlook client together with the
// logger, metrics recorder, audit logger and read-only flag that tool
// handlers consult on every call.
//
// HTTPServer serves the MCP streamable HTTP transport on /mcp next to the
// /healthz, /readyz and /healthz/detailed probes. Readiness opens a short
// Outlook session, so a pod whose Outlook profile is gone drops out of
// rotation.
//
// SessionIDManager issues random Mcp-Session-Id values, expires idle
// sessions and reports the active_sessions gauge.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
