package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/logging"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
)

// ToolFunc is the body of a tool. It returns the success payload or an
// error; the wrapper turns either into the JSON envelope.
type ToolFunc func(ctx context.Context, client *outlook.Client, args Args) (Envelope, error)

// recipientArgs are the arguments whose addresses are recorded in the audit
// log. BCC is deliberately absent.
var recipientArgs = []string{"to", "cc", "required_attendees", "optional_attendees"}

// folderArgs name the folder a tool works on.
var folderArgs = []string{"folder_path", "folder"}

// InstrumentedToolHandler wraps a tool body with the error boundary,
// tracing, metrics and audit logging. It never returns a Go error: every
// failure, including a panic in fn, becomes an error envelope.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("get_inbox_emails",
//		instrumentation.ServiceMail, instrumentation.OperationList, sc, handleInbox))
func InstrumentedToolHandler(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	fn ToolFunc,
) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := Args(request.GetArguments())
		if args == nil {
			args = Args{}
		}

		invocation := instrumentation.NewToolInvocation(toolName).
			WithService(serviceName, operation)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithService(serviceName).
			WithOperation(operation).
			WithInvocationID(invocation.InvocationID).
			WithReadOnly(sc.ReadOnly())
		if folder := firstArg(args, folderArgs); folder != "" {
			invocation.WithFolder(folder)
			attrs.WithFolder(folder)
		}
		recipients := make([]string, 0, len(recipientArgs))
		for _, key := range recipientArgs {
			recipients = append(recipients, args.String(key))
		}
		invocation.WithRecipients(recipients...)

		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()
		invocation.WithSpanContext(ctx)

		logger := logging.WithTool(sc.Logger(), toolName)
		start := time.Now()
		env, err := run(ctx, toolName, sc.Client(), args, serviceName, operation, fn)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		errorType := ""
		var result *mcp.CallToolResult
		if err != nil {
			status = instrumentation.StatusError
			errorType = ErrorType(err)
			invocation.CompleteWithErrorType(errorType, errorMessage(err))
			instrumentation.SetSpanErrorType(span, errorType, errorMessage(err))
			logger.LogAttrs(ctx, levelFor(err), "tool call failed",
				logging.Status(status), slog.String(logging.KeyErrorType, errorType), logging.Err(err),
				slog.Duration(logging.KeyDuration, duration))
			result = ErrorResult(err)
		} else {
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
			logger.Debug("tool call succeeded", logging.Status(status), slog.Duration(logging.KeyDuration, duration))
			result = SuccessResult(env)
		}

		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, errorType, duration)
			// Validation failures never reach Outlook.
			if errorType != outlook.KindValidation.String() {
				metrics.RecordOutlookOperation(ctx, serviceName, operation, status, duration)
			}
		}
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, nil
	}
}

// run calls fn inside an Outlook span and converts a panic into an error.
func run(ctx context.Context, toolName string, client *outlook.Client, args Args, service, operation string, fn ToolFunc) (env Envelope, err error) {
	ctx, span := instrumentation.StartOutlookSpan(ctx, service, operation)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			env, err = nil, panicError(toolName, r)
		}
		if err != nil {
			instrumentation.SetSpanError(span, err)
		}
	}()
	return fn(ctx, client, args)
}

// levelFor logs caller mistakes at info and everything else at warn.
func levelFor(err error) slog.Level {
	switch outlook.KindOf(err) {
	case outlook.KindValidation, outlook.KindNotFound:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func firstArg(args Args, keys []string) string {
	for _, key := range keys {
		if v := args.String(key); v != "" {
			return v
		}
	}
	return ""
}
