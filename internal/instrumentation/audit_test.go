package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/teemow/outlook-mcp/internal/logging"
)

// Test constants to reduce string repetition and satisfy goconst
const (
	testRecipients = "jane@example.com; bob@acme.io"
	testTraceID    = "abc123def456"
	testSpanID     = "span789"
	testToolSend   = "send_email"
	testToolEvent  = "create_event"
	testToolFolder = "search_folder"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolSend)

	if ti.Tool != testToolSend {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolSend)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}
	if _, err := uuid.Parse(ti.InvocationID); err != nil {
		t.Errorf("InvocationID %q is not a UUID: %v", ti.InvocationID, err)
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Error != "" {
		t.Errorf("Error should be empty, got %q", ti.Error)
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_UniqueIDs(t *testing.T) {
	a := NewToolInvocation(testToolSend)
	b := NewToolInvocation(testToolSend)
	if a.InvocationID == b.InvocationID {
		t.Error("expected distinct invocation IDs")
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolEvent)
	ti.CompleteWithError(errors.New("failed to connect to Outlook"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "failed to connect to Outlook" {
		t.Errorf("Error = %q", ti.Error)
	}
	if ti.Status() != StatusError {
		t.Errorf("Status = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_CompleteWithErrorType(t *testing.T) {
	ti := NewToolInvocation(testToolFolder)
	ti.CompleteWithErrorType("not_found", "Folder 'Inbox/Nope' not found")

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.ErrorType != "not_found" {
		t.Errorf("ErrorType = %q", ti.ErrorType)
	}
	if ti.Error != "Folder 'Inbox/Nope' not found" {
		t.Errorf("Error = %q", ti.Error)
	}
}

func TestToolInvocation_Builders(t *testing.T) {
	ti := NewToolInvocation(testToolSend).
		WithService(ServiceMail, OperationSend).
		WithFolder("Inbox").
		WithRecipients("jane@example.com", " ", "bob@acme.io; carol@acme.io")

	if ti.ServiceName != ServiceMail || ti.Operation != OperationSend {
		t.Errorf("service/operation = %q/%q", ti.ServiceName, ti.Operation)
	}
	if ti.Folder != "Inbox" {
		t.Errorf("Folder = %q", ti.Folder)
	}
	if ti.Recipients != "jane@example.com; bob@acme.io; carol@acme.io" {
		t.Errorf("Recipients = %q", ti.Recipients)
	}
	if got := ti.RecipientDomains(); got != "acme.io,example.com" {
		t.Errorf("RecipientDomains = %q", got)
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation(testToolSend).WithSpanContext(context.Background())
	if ti.TraceID != "" || ti.SpanID != "" {
		t.Errorf("expected empty trace context, got %q/%q", ti.TraceID, ti.SpanID)
	}
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	recordSpans(t)
	ctx, span := StartToolSpan(context.Background(), testToolSend)
	defer span.End()

	ti := NewToolInvocation(testToolSend).WithSpanContext(ctx)
	if ti.TraceID != GetTraceID(ctx) || ti.SpanID != GetSpanID(ctx) {
		t.Errorf("trace context not captured: %q/%q", ti.TraceID, ti.SpanID)
	}
}

func attrMap(attrs []slog.Attr) map[string]slog.Value {
	m := make(map[string]slog.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestToolInvocation_LogAttrs_HidesRecipients(t *testing.T) {
	ti := &ToolInvocation{
		InvocationID: "id-1",
		Tool:         testToolSend,
		ServiceName:  ServiceMail,
		Operation:    OperationSend,
		Recipients:   testRecipients,
		Success:      true,
		TraceID:      testTraceID,
		SpanID:       testSpanID,
	}

	m := attrMap(ti.LogAttrs())

	if m["invocation_id"].String() != "id-1" {
		t.Errorf("invocation_id = %v", m["invocation_id"])
	}
	if m["recipient_domains"].String() != "acme.io,example.com" {
		t.Errorf("recipient_domains = %v", m["recipient_domains"])
	}
	hashed, ok := m[logging.KeyRecipients].Any().([]string)
	if !ok || len(hashed) != 2 {
		t.Fatalf("recipients = %v", m[logging.KeyRecipients])
	}
	for _, h := range hashed {
		if strings.Contains(h, "@") {
			t.Errorf("recipient %q not anonymized", h)
		}
	}
	if _, ok := m["span_id"]; ok {
		t.Error("span_id should only appear in audit attrs")
	}
	if _, ok := m["error"]; ok {
		t.Error("error should be absent on success")
	}
}

func TestToolInvocation_LogAuditAttrs(t *testing.T) {
	ti := &ToolInvocation{
		InvocationID: "id-2",
		Tool:         testToolSend,
		Recipients:   testRecipients,
		Success:      false,
		Error:        "To is required",
		ErrorType:    "validation",
		SpanID:       testSpanID,
	}

	m := attrMap(ti.LogAuditAttrs())

	if m[logging.KeyRecipients].String() != testRecipients {
		t.Errorf("recipients = %v, want raw list", m[logging.KeyRecipients])
	}
	if m["span_id"].String() != testSpanID {
		t.Errorf("span_id = %v", m["span_id"])
	}
	if m["error_type"].String() != "validation" {
		t.Errorf("error_type = %v", m["error_type"])
	}
	if m["error"].String() != "To is required" {
		t.Errorf("error = %v", m["error"])
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	tests := []struct {
		name       string
		success    bool
		includePII bool
		wantMsg    string
		wantLevel  string
	}{
		{name: "success", success: true, wantMsg: "tool_executed", wantLevel: "INFO"},
		{name: "failure", success: false, wantMsg: "tool_failed", wantLevel: "WARN"},
		{name: "pii", success: true, includePII: true, wantMsg: "tool_executed", wantLevel: "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludePII: tt.includePII})

			ti := NewToolInvocation(testToolSend).WithRecipients(testRecipients)
			ti.Complete(tt.success, nil)
			al.LogToolInvocation(ti)

			entries := decodeLines(t, &buf)
			if len(entries) != 1 {
				t.Fatalf("expected 1 log line, got %d", len(entries))
			}
			e := entries[0]
			if e["msg"] != tt.wantMsg || e["level"] != tt.wantLevel {
				t.Errorf("msg/level = %v/%v", e["msg"], e["level"])
			}
			if e["invocation_id"] != ti.InvocationID {
				t.Errorf("invocation_id = %v", e["invocation_id"])
			}
			raw := strings.Contains(buf.String(), "jane@example.com")
			if raw != tt.includePII {
				t.Errorf("raw recipient present = %v, want %v", raw, tt.includePII)
			}
		})
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	al.SetEnabled(false)

	al.LogToolInvocation(NewToolInvocation(testToolSend).CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestAuditLogger_SetIncludePII(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	al.SetIncludePII(true)

	al.LogToolInvocation(NewToolInvocation(testToolSend).WithRecipients("jane@example.com").CompleteSuccess())

	if !strings.Contains(buf.String(), "jane@example.com") {
		t.Errorf("expected raw recipient, got %q", buf.String())
	}
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var al *AuditLogger
	al.LogToolInvocation(NewToolInvocation(testToolSend))

	// nil slog.Logger falls back to the default logger
	if NewAuditLogger(nil).logger == nil {
		t.Error("expected default logger")
	}
}
