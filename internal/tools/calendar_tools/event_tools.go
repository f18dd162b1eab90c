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

var limitDescription = fmt.Sprintf("Maximum number of events (default %d, max %d)", outlook.DefaultEventLimit, outlook.MaxEventLimit)

// RegisterEventTools registers the event listing tools and, unless readOnly,
// create_calendar_event.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	eventsTool := mcp.NewTool("get_calendar_events",
		mcp.WithDescription("List upcoming calendar events in start order, including occurrences of recurring series"),
		mcp.WithNumber("days_ahead",
			mcp.Description(fmt.Sprintf("Number of days ahead to include, up to the end of that day (default %d)", outlook.DefaultDaysAhead)),
		),
		mcp.WithBoolean("include_past",
			mcp.Description("Start at midnight today instead of now, so earlier events of today are included (default false)"),
		),
		mcp.WithNumber("limit", mcp.Description(limitDescription)),
	)
	s.AddTool(eventsTool, common.InstrumentedToolHandler("get_calendar_events",
		instrumentation.ServiceCalendar, instrumentation.OperationList, sc, handleGetEvents))

	searchTool := mcp.NewTool("search_calendar_events",
		mcp.WithDescription("Search calendar events by keyword in subject or location (case-insensitive)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
		mcp.WithNumber("days_range",
			mcp.Description(fmt.Sprintf("Search this many days before and after today (default %d)", outlook.DefaultDaysRange)),
		),
		mcp.WithNumber("limit", mcp.Description(limitDescription)),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_calendar_events",
		instrumentation.ServiceCalendar, instrumentation.OperationSearch, sc, handleSearchEvents))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("create_calendar_event",
		mcp.WithDescription("Create a calendar appointment. With attendees it is sent as a meeting invitation. "+
			"Times accept 'YYYY-MM-DD HH:MM' or phrases such as 'tomorrow 2pm'"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Event subject"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time, e.g. '2025-03-20 14:00' or 'next monday 9am'"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("End time; must not be before start_time"),
		),
		mcp.WithString("location", mcp.Description("Event location")),
		mcp.WithString("body", mcp.Description("Event description")),
		mcp.WithString("required_attendees",
			mcp.Description("Required attendee addresses, separated by semicolons"),
		),
		mcp.WithString("optional_attendees",
			mcp.Description("Optional attendee addresses, separated by semicolons"),
		),
		mcp.WithNumber("reminder_minutes",
			mcp.Description(fmt.Sprintf("Reminder before start in minutes (default %d)", outlook.DefaultReminderMinutes)),
		),
		mcp.WithBoolean("is_all_day", mcp.Description("All-day event (default false)")),
		mcp.WithString("busy_status",
			mcp.Description("free, tentative, busy or out_of_office. Default keeps Outlook's choice"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_calendar_event",
		instrumentation.ServiceCalendar, instrumentation.OperationCreate, sc, handleCreateEvent))

	return nil
}

func handleGetEvents(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	q := outlook.EventQuery{
		DaysAhead:   args.Int("days_ahead", outlook.DefaultDaysAhead),
		IncludePast: args.Bool("include_past", false),
		Limit:       args.Int("limit", outlook.DefaultEventLimit),
	}
	events, err := client.Events(ctx, q)
	if err != nil {
		return nil, err
	}
	return common.List("events", events).
		With("days_ahead", q.DaysAhead).
		With("include_past", q.IncludePast), nil
}

func handleSearchEvents(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	query := args.String("query")
	daysRange := args.Int("days_range", outlook.DefaultDaysRange)
	events, err := client.SearchEvents(ctx, query, daysRange, args.Int("limit", outlook.DefaultEventLimit))
	if err != nil {
		return nil, err
	}
	return common.List("events", events).
		With("query", query).
		With("days_range", daysRange), nil
}

func handleCreateEvent(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	ev := outlook.NewEvent{
		Subject:           args.String("subject"),
		Start:             args.String("start_time"),
		End:               args.String("end_time"),
		Location:          args.String("location"),
		Body:              args.Text("body"),
		RequiredAttendees: args.String("required_attendees"),
		OptionalAttendees: args.String("optional_attendees"),
		ReminderMinutes:   args.Int("reminder_minutes", outlook.DefaultReminderMinutes),
		AllDay:            args.Bool("is_all_day", false),
		BusyStatus:        args.String("busy_status"),
	}
	rec, err := client.CreateEvent(ctx, ev)
	if err != nil {
		return nil, err
	}

	msg := "Event created"
	if sent, _ := rec["invitation_sent"].(bool); sent {
		msg = "Meeting invitation sent"
	}
	return common.Envelope{
		"message": msg,
		"event":   rec,
	}, nil
}
