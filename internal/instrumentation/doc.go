// Package instrumentation provides OpenTelemetry instrumentation for the
// outlook-mcp server.
//
// This package enables observability through:
//   - OpenTelemetry metrics for HTTP requests, MCP tools and Outlook automation calls
//   - Distributed tracing for tool invocations and Outlook calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//   - Audit logging of every tool invocation
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of open streamable HTTP sessions
//
// Outlook Metrics:
//   - outlook_operations_total: Counter of Outlook operations by service, operation, status
//   - outlook_operation_duration_seconds: Histogram of Outlook operation durations
//   - outlook_folder_cache_lookups_total: Folder path cache lookups by result (hit, miss, stale)
//   - outlook_items_skipped_total: Unreadable items dropped from listings, by entity
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// *Metrics also implements outlook.Observer, so it can be passed straight to
// outlook.Options.
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Outlook calls (outlook.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: outlook-mcp)
//   - METRICS_DETAILED_LABELS: Add error_type to tool metrics (default: false)
//   - METRICS_EXPORT_INTERVAL: Push interval for otlp and stdout metrics (default: 10s)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII: Audit log controls
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	client := outlook.NewClient(connector, outlook.Options{Observer: recorder})
//
//	recorder.RecordOutlookOperation(ctx, "mail", "list", "success", time.Since(start))
//	recorder.RecordToolInvocation(ctx, "get_inbox_emails", "success", "", time.Since(start))
package instrumentation
