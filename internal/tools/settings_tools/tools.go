package settings_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
	"github.com/teemow/outlook-mcp/internal/tools/common"
)

// RegisterSettingsTools registers the out-of-office tools. set_out_of_office
// is skipped in read-only mode.
func RegisterSettingsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getTool := mcp.NewTool("get_out_of_office",
		mcp.WithDescription("Show the current automatic out-of-office reply settings"),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_out_of_office",
		instrumentation.ServiceSettings, instrumentation.OperationGet, sc, handleGetOutOfOffice))

	if readOnly {
		return nil
	}

	setTool := mcp.NewTool("set_out_of_office",
		mcp.WithDescription("Turn the automatic out-of-office reply on or off and update its schedule and messages. "+
			"Settings that are not given are left unchanged"),
		mcp.WithBoolean("enabled",
			mcp.Required(),
			mcp.Description("Whether automatic replies are on"),
		),
		mcp.WithBoolean("scheduled",
			mcp.Description("Only reply between start_time and end_time (default false)"),
		),
		mcp.WithString("start_time",
			mcp.Description("Schedule start, e.g. '2025-04-01 08:00' or 'next monday'. Required when scheduled"),
		),
		mcp.WithString("end_time",
			mcp.Description("Schedule end; must be after start_time. Required when scheduled"),
		),
		mcp.WithString("internal_reply",
			mcp.Description("Reply sent to senders inside the organization"),
		),
		mcp.WithString("external_reply",
			mcp.Description("Reply sent to senders outside the organization"),
		),
		mcp.WithString("external_audience",
			mcp.Description("Which external senders get a reply: none, known or all"),
		),
	)
	s.AddTool(setTool, common.InstrumentedToolHandler("set_out_of_office",
		instrumentation.ServiceSettings, instrumentation.OperationUpdate, sc, handleSetOutOfOffice))

	return nil
}

func handleGetOutOfOffice(ctx context.Context, client *outlook.Client, _ common.Args) (common.Envelope, error) {
	settings, err := client.AutoReply(ctx)
	if err != nil {
		return nil, err
	}
	return common.Envelope{"out_of_office": settings}, nil
}

func handleSetOutOfOffice(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	u := outlook.AutoReplyUpdate{
		Enabled:          args.Bool("enabled", false),
		Scheduled:        args.Bool("scheduled", false),
		StartTime:        args.String("start_time"),
		EndTime:          args.String("end_time"),
		InternalReply:    args.Text("internal_reply"),
		ExternalReply:    args.Text("external_reply"),
		ExternalAudience: args.String("external_audience"),
	}
	if err := client.SetAutoReply(ctx, u); err != nil {
		return nil, err
	}

	msg := "Out-of-office reply disabled"
	if u.Enabled {
		msg = "Out-of-office reply enabled"
		if u.Scheduled {
			msg += " from " + u.StartTime + " to " + u.EndTime
		}
	}
	return common.Envelope{
		"message":   msg,
		"enabled":   u.Enabled,
		"scheduled": u.Scheduled,
	}, nil
}
