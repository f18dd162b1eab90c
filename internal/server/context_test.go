package server

import (
	"context"
	"log/slog"
	"testing"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/outlook/outlooktest"
)

func newTestServerContext(t *testing.T, fake *outlooktest.Outlook) *ServerContext {
	t.Helper()
	client := outlook.NewClient(fake.Connector(), outlook.Options{})
	sc, err := NewServerContext(context.Background(), client)
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	return sc
}

func TestNewServerContext_RequiresClient(t *testing.T) {
	if _, err := NewServerContext(context.Background(), nil); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestServerContext_Accessors(t *testing.T) {
	sc := newTestServerContext(t, outlooktest.NewOutlook())

	if sc.Client() == nil {
		t.Error("Client() should not be nil")
	}
	if sc.Logger() == nil {
		t.Error("Logger() should default to slog.Default")
	}

	logger := slog.New(slog.DiscardHandler)
	sc.SetLogger(logger)
	sc.SetLogger(nil)
	if sc.Logger() != logger {
		t.Error("SetLogger(nil) should keep the previous logger")
	}

	metrics := &instrumentation.Metrics{}
	sc.SetMetrics(metrics)
	if sc.Metrics() != metrics {
		t.Error("Metrics() did not return the configured recorder")
	}

	al := instrumentation.NewAuditLogger(logger)
	sc.SetAuditLogger(al)
	if sc.AuditLogger() != al {
		t.Error("AuditLogger() did not return the configured logger")
	}

	if sc.ReadOnly() {
		t.Error("read-only should default to false")
	}
	sc.SetReadOnly(true)
	if !sc.ReadOnly() {
		t.Error("SetReadOnly(true) not applied")
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t, outlooktest.NewOutlook())

	if sc.IsShutdown() {
		t.Fatal("new context should not be shut down")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() should be true after Shutdown")
	}
	if sc.Context().Err() == nil {
		t.Error("context should be cancelled after Shutdown")
	}
	// Second call is a no-op
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}
