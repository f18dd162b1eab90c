package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/outlook"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	client      *outlook.Client
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	readOnly    bool
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context around an Outlook client.
// The client is shared by every tool; it opens a fresh host session per call.
func NewServerContext(ctx context.Context, client *outlook.Client) (*ServerContext, error) {
	if client == nil {
		return nil, errors.New("outlook client is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		client: client,
		logger: slog.Default(),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the Outlook client
func (sc *ServerContext) Client() *outlook.Client {
	return sc.client
}

// Logger returns the logger tools should use
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// SetLogger replaces the logger. A nil logger is ignored.
func (sc *ServerContext) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.logger = logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when auditing is off
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger used by instrumented tool handlers
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// ReadOnly reports whether mutating tools are disabled
func (sc *ServerContext) ReadOnly() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.readOnly
}

// SetReadOnly enables or disables read-only mode
func (sc *ServerContext) SetReadOnly(readOnly bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.readOnly = readOnly
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context and drops every cached folder
// handle.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	sc.client.ClearFolderCache()
	return nil
}
