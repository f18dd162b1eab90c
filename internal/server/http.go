package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/logging"
)

// DefaultEndpointPath is where the streamable HTTP transport serves MCP.
const DefaultEndpointPath = "/mcp"

// HTTPOptions configures an HTTPServer.
type HTTPOptions struct {
	// EndpointPath defaults to DefaultEndpointPath.
	EndpointPath string

	// DisableStreaming makes the transport answer with plain JSON instead
	// of SSE streams.
	DisableStreaming bool

	// Sessions issues and validates Mcp-Session-Id headers. When nil the
	// transport's built-in generator is used.
	Sessions *SessionIDManager

	Logger *slog.Logger
}

// HTTPServer serves the MCP streamable HTTP transport alongside the
// health endpoints.
type HTTPServer struct {
	mcpServer *mcpserver.MCPServer
	opts      HTTPOptions
	logger    *slog.Logger

	mu            sync.Mutex
	metrics       *instrumentation.Metrics
	healthChecker *HealthChecker
	httpServer    *http.Server
	addr          string
}

// NewHTTPServer creates an HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, opts HTTPOptions) *HTTPServer {
	if opts.EndpointPath == "" {
		opts.EndpointPath = DefaultEndpointPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		mcpServer: mcpServer,
		opts:      opts,
		logger:    logger,
	}
}

// SetMetrics enables HTTP request metrics.
func (s *HTTPServer) SetMetrics(m *instrumentation.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// SetHealthChecker registers /healthz, /readyz and /healthz/detailed on the
// server's mux.
func (s *HTTPServer) SetHealthChecker(h *HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthChecker = h
}

// Handler builds the request router.
func (s *HTTPServer) Handler() http.Handler {
	s.mu.Lock()
	health := s.healthChecker
	s.mu.Unlock()

	mux := http.NewServeMux()

	transportOpts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(s.opts.EndpointPath),
		mcpserver.WithLogger(logging.NewSlogAdapter(s.logger)),
	}
	if s.opts.DisableStreaming {
		transportOpts = append(transportOpts, mcpserver.WithDisableStreaming(true))
	}
	if s.opts.Sessions != nil {
		transportOpts = append(transportOpts, mcpserver.WithSessionIdManager(s.opts.Sessions))
	}
	mux.Handle(s.opts.EndpointPath, mcpserver.NewStreamableHTTPServer(s.mcpServer, transportOpts...))

	if health != nil {
		health.RegisterHealthEndpoints(mux)
	}

	return s.instrumentationMiddleware(mux)
}

// Start listens on addr and serves until Shutdown. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *HTTPServer) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams stay open for as long as the client listens.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	s.logger.Info("Streamable HTTP server listening", "addr", s.addr, "endpoint", s.opts.EndpointPath)
	return srv.Serve(ln)
}

// Addr returns the bound address once Start is listening.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown gracefully shuts down the server and stops the session manager.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if s.opts.Sessions != nil {
		s.opts.Sessions.Stop()
	}
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush lets SSE responses through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// instrumentationMiddleware records http_requests_total and
// http_request_duration_seconds when metrics are set.
func (s *HTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		metrics := s.metrics
		s.mu.Unlock()

		if metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
