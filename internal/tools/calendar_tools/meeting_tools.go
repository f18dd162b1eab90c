package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
	"github.com/teemow/outlook-mcp/internal/tools/common"
)

// RegisterMeetingTools registers get_meeting_requests and, unless readOnly,
// respond_to_meeting.
func RegisterMeetingTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	requestsTool := mcp.NewTool("get_meeting_requests",
		mcp.WithDescription("List meeting invitations in the inbox that have not been accepted or declined yet"),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of invitations (default %d, max %d)", outlook.DefaultSearchLimit, outlook.MaxEmailLimit)),
		),
	)
	s.AddTool(requestsTool, common.InstrumentedToolHandler("get_meeting_requests",
		instrumentation.ServiceCalendar, instrumentation.OperationList, sc, handleMeetingRequests))

	if readOnly {
		return nil
	}

	respondTool := mcp.NewTool("respond_to_meeting",
		mcp.WithDescription("Accept, decline or tentatively accept a meeting invitation"),
		mcp.WithString("meeting_id",
			mcp.Required(),
			mcp.Description("Entry ID of the invitation or calendar item, as returned by get_meeting_requests"),
		),
		mcp.WithString("response_type",
			mcp.Required(),
			mcp.Description("accept, decline or tentative"),
		),
		mcp.WithBoolean("send_response",
			mcp.Description("Notify the organizer (default true). false only updates your calendar"),
		),
		mcp.WithString("comment",
			mcp.Description("Optional note included in the response to the organizer"),
		),
	)
	s.AddTool(respondTool, common.InstrumentedToolHandler("respond_to_meeting",
		instrumentation.ServiceCalendar, instrumentation.OperationRespond, sc, handleRespondToMeeting))

	return nil
}

func handleMeetingRequests(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	requests, err := client.MeetingRequests(ctx, args.Int("limit", outlook.DefaultSearchLimit))
	if err != nil {
		return nil, err
	}
	return common.List("meeting_requests", requests), nil
}

func handleRespondToMeeting(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	res, err := client.RespondToMeeting(ctx,
		args.String("meeting_id"),
		args.String("response_type"),
		args.Bool("send_response", true),
		args.Text("comment"),
	)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Meeting '%s' marked as %s", res.Subject, res.Response)
	if res.ResponseSent {
		msg = fmt.Sprintf("Response '%s' sent for meeting '%s'", res.Response, res.Subject)
	}
	return common.Envelope{
		"message":       msg,
		"subject":       res.Subject,
		"response":      res.Response,
		"response_sent": res.ResponseSent,
	}, nil
}
