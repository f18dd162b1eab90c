package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrEntity    = "entity"
	attrErrorType = "error_type"
)

// Metrics provides methods for recording observability metrics.
//
// A zero Metrics is a valid no-op recorder, which is what a disabled
// Provider hands out.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	// Outlook automation metrics
	outlookOperationsTotal   metric.Int64Counter
	outlookOperationDuration metric.Float64Histogram
	folderCacheLookupsTotal  metric.Int64Counter
	itemsSkippedTotal        metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Configuration
	// detailedLabels controls whether higher-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether higher-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of active streamable HTTP sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_sessions gauge: %w", err)
	}

	// Outlook Metrics
	m.outlookOperationsTotal, err = meter.Int64Counter(
		"outlook_operations_total",
		metric.WithDescription("Total number of Outlook automation operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outlook_operations_total counter: %w", err)
	}

	m.outlookOperationDuration, err = meter.Float64Histogram(
		"outlook_operation_duration_seconds",
		metric.WithDescription("Outlook automation operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outlook_operation_duration_seconds histogram: %w", err)
	}

	m.folderCacheLookupsTotal, err = meter.Int64Counter(
		"outlook_folder_cache_lookups_total",
		metric.WithDescription("Folder path cache lookups by result (hit, miss, stale)"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outlook_folder_cache_lookups_total counter: %w", err)
	}

	m.itemsSkippedTotal, err = meter.Int64Counter(
		"outlook_items_skipped_total",
		metric.WithDescription("Items dropped from listings because they could not be read"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outlook_items_skipped_total counter: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOutlookOperation records one Outlook automation operation.
//
// Parameters:
//   - service: Outlook area (mail, calendar, contacts, folders, settings)
//   - operation: Operation type (list, get, search, create, send, respond, update)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordOutlookOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.outlookOperationsTotal == nil || m.outlookOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.outlookOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.outlookOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// FolderCacheLookup counts a folder cache lookup. result is one of
// outlook.CacheHit, outlook.CacheMiss or outlook.CacheStale.
func (m *Metrics) FolderCacheLookup(result string) {
	if m == nil || m.folderCacheLookupsTotal == nil {
		return
	}
	m.folderCacheLookupsTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(attrResult, result)))
}

// ItemSkipped counts an item that a listing dropped because it could not
// be read.
func (m *Metrics) ItemSkipped(entity string) {
	if m == nil || m.itemsSkippedTotal == nil {
		return
	}
	m.itemsSkippedTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(attrEntity, entity)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "get_inbox_emails", "create_event")
//   - status: Result status ("success" or "error")
//   - errorType: Error classification, only used when detailed labels are on
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status, errorType string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add the extra label if explicitly enabled
	if m.detailedLabels && errorType != "" {
		attrs = append(attrs, attribute.String(attrErrorType, errorType))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active sessions counter.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, -1)
}
