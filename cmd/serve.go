package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/outlook-mcp/internal/config"
	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/logging"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
	"github.com/teemow/outlook-mcp/internal/tools/calendar_tools"
	"github.com/teemow/outlook-mcp/internal/tools/contact_tools"
	"github.com/teemow/outlook-mcp/internal/tools/folder_tools"
	"github.com/teemow/outlook-mcp/internal/tools/mail_tools"
	"github.com/teemow/outlook-mcp/internal/tools/settings_tools"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		disableStreaming bool
	)

	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Outlook mail,
calendar, contact and out-of-office tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport at /mcp, with /healthz and /readyz

Read-only Mode:
  With --read-only only tools that do not send, save or change anything are
  registered.

Configuration:
  Settings are read from the config file, then OUTLOOK_MCP_* environment
  variables (e.g. OUTLOOK_MCP_SERVER_READ_ONLY=true), then flags given on the
  command line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if debugMode {
				cfg.Log.Level = "debug"
			}
			return runServe(cfg, disableStreaming)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging (same as --log-level debug)")
	cmd.Flags().String("transport", defaults.Server.Transport, "Transport type: stdio or streamable-http")
	cmd.Flags().String("http-addr", defaults.Server.HTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().Bool("read-only", defaults.Server.ReadOnly, "Only register tools that do not modify the mailbox")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Answer HTTP requests with plain JSON instead of SSE streams (for compatibility with certain clients)")

	cmd.Flags().String("log-level", defaults.Log.Level, "Log level: debug, info, warn or error")
	cmd.Flags().String("log-format", defaults.Log.Format, "Log format: text or json")
	cmd.Flags().String("log-file", defaults.Log.File, "Also write logs to this file, rotated by size")

	cmd.Flags().StringSlice("excluded-stores", defaults.Outlook.ExcludedStores, "Store display names (shared mailboxes) to skip in folder lookups")
	cmd.Flags().Int("days-back", defaults.Outlook.DefaultDaysBack, "Default received-date window in days for custom folder searches")

	// Metrics server flags
	cmd.Flags().Bool("metrics-enabled", defaults.Metrics.Enabled, "Enable the metrics server on a dedicated port (streamable-http only)")
	cmd.Flags().String("metrics-addr", defaults.Metrics.Addr, "Metrics server address")

	return cmd
}

// clientOptions maps the configuration onto the Outlook client.
func clientOptions(cfg config.Config, logger *slog.Logger, observer outlook.Observer) outlook.Options {
	return outlook.Options{
		ExcludedStores:  cfg.Outlook.ExcludedStores,
		DefaultDaysBack: cfg.Outlook.DefaultDaysBack,
		AutoReply:       cfg.Outlook.AutoReply.Properties(),
		Logger:          logger,
		Observer:        observer,
	}
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("outlook-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
}

func runServe(cfg config.Config, disableStreaming bool) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, logCloser, err := logging.NewLogger(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	if cfg.Server.Transport != config.TransportStdio && cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(cfg.Metrics.Addr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	connector := outlook.NewCOMConnector()
	defer connector.Close()
	client := outlook.NewClient(connector, clientOptions(cfg, logger, provider.Metrics()))

	serverContext, err := server.NewServerContext(shutdownCtx, client)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("Error during server context shutdown", logging.Err(err))
		}
	}()
	serverContext.SetLogger(logger)
	serverContext.SetReadOnly(cfg.Server.ReadOnly)
	serverContext.SetMetrics(provider.Metrics())
	serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(
		logger.With(slog.String("component", "audit")), instrConfig.AuditLogging))

	mcpSrv := newMCPServer()

	if cfg.Server.ReadOnly {
		logger.Info("Starting server in READ-ONLY mode")
	}

	if err := registerAllTools(mcpSrv, serverContext, cfg.Server.ReadOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch cfg.Server.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg, disableStreaming, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Server.Transport)
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("Metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers every tool group. readOnly drops the tools that
// send, save or change anything.
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Mail",
			register: func() error {
				return mail_tools.RegisterMailTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Folder",
			register: func() error {
				return folder_tools.RegisterFolderTools(mcpSrv, ctx)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Contact",
			register: func() error {
				return contact_tools.RegisterContactTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Settings",
			register: func() error {
				return settings_tools.RegisterSettingsTools(mcpSrv, ctx, readOnly)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, cfg config.Config, disableStreaming bool, instrProvider *instrumentation.Provider, logger *slog.Logger) error {
	sessions := server.NewSessionIDManagerWithLogger(server.DefaultSessionTimeout, logger)
	sessions.SetMetrics(instrProvider.Metrics())

	httpServer := server.NewHTTPServer(mcpSrv, server.HTTPOptions{
		DisableStreaming: disableStreaming,
		Sessions:         sessions,
		Logger:           logger,
	})

	// Set up health checker for health check endpoints
	healthChecker := server.NewHealthChecker(serverContext)
	httpServer.SetHealthChecker(healthChecker)

	// Set up HTTP instrumentation for metrics
	if instrProvider.Enabled() {
		httpServer.SetMetrics(instrProvider.Metrics())
	}

	logger.Info("Starting streamable HTTP server",
		"addr", cfg.Server.HTTPAddr,
		"endpoint", server.DefaultEndpointPath,
		"read_only", cfg.Server.ReadOnly)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(cfg.Server.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
