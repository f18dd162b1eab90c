package instrumentation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/outlook-mcp/internal/logging"
)

// ToolInvocation captures all information about a tool invocation for audit logging.
//
// # Privacy Considerations
//
// Recipients holds raw addresses. LogAttrs only emits their hashes and
// domains; LogAuditAttrs emits them verbatim.
type ToolInvocation struct {
	// InvocationID is a random identifier shared by the audit entry and the
	// tool span.
	InvocationID string

	// Tool name
	Tool string

	// Target information
	ServiceName string // Outlook area (mail, calendar, contacts, folders, settings)
	Operation   string // Operation type (list, get, search, create, send, respond, update)
	Folder      string // Folder path, when the tool addresses one
	Recipients  string // Semicolon or comma separated addresses, for sending tools

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	ErrorType string

	// Tracing context
	TraceID string
	SpanID  string
}

// RecipientDomains returns the distinct recipient domains for lower-cardinality logging.
func (ti *ToolInvocation) RecipientDomains() string {
	return ExtractRecipientDomains(ti.Recipients)
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all tool invocation logs.
//
// Recipient addresses are reduced to hashes and domains. For full audit
// logging, use LogAuditAttrs.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := ti.baseAttrs()

	if ti.Recipients != "" {
		attrs = append(attrs,
			logging.Recipients(ti.Recipients),
			slog.String("recipient_domains", ti.RecipientDomains()),
		)
	}
	return append(attrs, ti.outcomeAttrs()...)
}

// LogAuditAttrs returns slog attributes for full audit logging.
//
// # Security Warning
//
// This method includes PII (recipient addresses). Ensure audit logs are
// stored with appropriate access controls.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := ti.baseAttrs()

	if ti.Recipients != "" {
		attrs = append(attrs, slog.String(logging.KeyRecipients, ti.Recipients))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return append(attrs, ti.outcomeAttrs()...)
}

func (ti *ToolInvocation) baseAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("invocation_id", ti.InvocationID),
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	// Add optional fields only if present
	if ti.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ti.ServiceName))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.Folder != "" {
		attrs = append(attrs, slog.String("folder", ti.Folder))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	return attrs
}

func (ti *ToolInvocation) outcomeAttrs() []slog.Attr {
	var attrs []slog.Attr
	if ti.ErrorType != "" {
		attrs = append(attrs, slog.String("error_type", ti.ErrorType))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started and a
// fresh invocation ID. Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		InvocationID: uuid.NewString(),
		Tool:         tool,
		StartTime:    time.Now(),
	}
}

// WithService sets the Outlook service area and operation.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithFolder sets the folder path the tool addressed.
func (ti *ToolInvocation) WithFolder(path string) *ToolInvocation {
	ti.Folder = path
	return ti
}

// WithRecipients sets the recipient list of a sending tool.
func (ti *ToolInvocation) WithRecipients(recipients ...string) *ToolInvocation {
	var parts []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			parts = append(parts, r)
		}
	}
	ti.Recipients = strings.Join(parts, "; ")
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same ToolInvocation for method chaining.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteWithErrorType marks the invocation as failed with a
// classification and message, for tools that report failure as a result
// rather than an error.
func (ti *ToolInvocation) CompleteWithErrorType(errorType, message string) *ToolInvocation {
	ti.Complete(false, nil)
	ti.ErrorType = errorType
	ti.Error = message
	return ti
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger provides structured audit logging for tool invocations.
// It wraps slog.Logger with convenience methods for logging tool operations.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: false,
		enabled:    true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// SetIncludePII sets whether to include recipient addresses in audit logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation logs a tool invocation. Successful calls are logged
// at info as tool_executed, failures at warn as tool_failed.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = ti.LogAuditAttrs()
	} else {
		attrs = ti.LogAttrs()
	}

	level := slog.LevelInfo
	msg := "tool_executed"
	if !ti.Success {
		level = slog.LevelWarn
		msg = "tool_failed"
	}
	al.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
