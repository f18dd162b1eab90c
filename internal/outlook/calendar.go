package outlook

import (
	"context"
	"strings"
	"time"
)

// PendingResponseStatuses are the response states under which an invitation
// is reported by MeetingRequests: none (0) and tentative (2). Organized (1),
// accepted (3), declined (4) and not-responded (5) are left out.
var PendingResponseStatuses = map[int]bool{
	ResponseNone:      true,
	ResponseTentative: true,
}

// EventQuery selects calendar events relative to now.
type EventQuery struct {
	// DaysAhead extends the window to the end of the day DaysAhead days
	// from now. Negative values use DefaultDaysAhead.
	DaysAhead int
	// IncludePast starts the window at midnight today instead of now.
	IncludePast bool
	Limit       int
}

// Events lists calendar events in start order, expanding recurrences.
func (c *Client) Events(ctx context.Context, q EventQuery) ([]Record, error) {
	const op = "get_calendar_events"
	days := q.DaysAhead
	if days < 0 {
		days = DefaultDaysAhead
	}
	limit := clampLimit(q.Limit, DefaultEventLimit, MaxEventLimit)

	now := c.now()
	from := now
	if q.IncludePast {
		from = startOfDay(now)
	}
	to := endOfDay(now.AddDate(0, 0, days))

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	items, err := c.calendarWindow(s, eventWindow(from, to, restrictDateTime))
	if err != nil {
		return nil, err
	}
	defer items.Release()
	return c.collect(op, "appointment", items, limit, limit, nil, FormatEvent)
}

// SearchEvents finds events within daysRange days either side of today
// whose subject or location contains query.
func (c *Client) SearchEvents(ctx context.Context, query string, daysRange, limit int) ([]Record, error) {
	const op = "search_calendar_events"
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationf(op, "query is required")
	}
	if daysRange <= 0 {
		daysRange = DefaultDaysRange
	}
	limit = clampLimit(limit, DefaultEventLimit, MaxEventLimit)

	now := c.now()
	from := startOfDay(now.AddDate(0, 0, -daysRange))
	to := startOfDay(now.AddDate(0, 0, daysRange))

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	items, err := c.calendarWindow(s, eventWindow(from, to, restrictDate))
	if err != nil {
		return nil, err
	}
	defer items.Release()

	match := func(item Object) bool {
		subject, _ := getString(item, "Subject")
		location, _ := getString(item, "Location")
		return containsFold(query, subject, location)
	}
	return c.collect(op, "appointment", items, limit, 0, match, FormatEvent)
}

// calendarWindow returns calendar items matching filter, sorted by start.
// Recurrences are only expanded when IncludeRecurrences is set after Sort
// and before Restrict.
func (c *Client) calendarWindow(s *session, filter string) (Object, error) {
	items, err := s.folderItems(FolderCalendar)
	if err != nil {
		return nil, err
	}
	if err := sortItems(s.op, items, "[Start]", false); err != nil {
		items.Release()
		return nil, err
	}
	if err := items.Set("IncludeRecurrences", true); err != nil {
		items.Release()
		return nil, hostError(s.op, "failed to include recurrences", err)
	}
	return restrict(s.op, items, filter)
}

// NewEvent describes an appointment to create. Start and End accept strict
// timestamps or natural-language phrases.
type NewEvent struct {
	Subject           string
	Start             string
	End               string
	Location          string
	Body              string
	RequiredAttendees string
	OptionalAttendees string
	ReminderMinutes   int
	AllDay            bool
	// BusyStatus is one of free, tentative, busy, out_of_office. Empty keeps
	// the host default.
	BusyStatus string
}

// CreateEvent validates ev, saves the appointment, and sends it as a meeting
// invitation when attendees are present.
func (c *Client) CreateEvent(ctx context.Context, ev NewEvent) (Record, error) {
	const op = "create_calendar_event"
	if strings.TrimSpace(ev.Subject) == "" {
		return nil, validationf(op, "subject is required")
	}
	now := c.now()
	start, err := parseDateArg(op, "start_time", ev.Start, now)
	if err != nil {
		return nil, err
	}
	end, err := parseDateArg(op, "end_time", ev.End, now)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, validationf(op, "end_time %s is before start_time %s", end.Format(TimeLayout), start.Format(TimeLayout))
	}
	if ev.ReminderMinutes < 0 {
		return nil, validationf(op, "reminder_minutes must not be negative")
	}
	busy := -1
	if ev.BusyStatus != "" {
		v, ok := busyStatusNames[strings.ToLower(strings.TrimSpace(ev.BusyStatus))]
		if !ok {
			return nil, validationf(op, "invalid busy_status %q (use free, tentative, busy or out_of_office)", ev.BusyStatus)
		}
		busy = v
	}

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	appt, err := s.createItem(ItemAppointment)
	if err != nil {
		return nil, err
	}
	defer appt.Release()

	invite := ev.RequiredAttendees != "" || ev.OptionalAttendees != ""
	if err := composeEvent(appt, ev, start, end, busy, invite); err != nil {
		return nil, hostError(op, "failed to set appointment fields", err)
	}
	if _, err := appt.Call("Save"); err != nil {
		return nil, hostError(op, "failed to save appointment", err)
	}
	if invite {
		if _, err := appt.Call("Send"); err != nil {
			return nil, hostError(op, "appointment saved but the invitation could not be sent", err)
		}
	}

	id, _ := getString(appt, "EntryID")
	return Record{
		"id":              id,
		"subject":         ev.Subject,
		"start":           start.Format(TimeLayout),
		"end":             end.Format(TimeLayout),
		"invitation_sent": invite,
	}, nil
}

func composeEvent(appt Object, ev NewEvent, start, end time.Time, busy int, invite bool) error {
	sets := []struct {
		prop  string
		value any
	}{
		{"Subject", ev.Subject},
		{"Start", start},
		{"End", end},
		{"AllDayEvent", ev.AllDay},
		{"ReminderSet", true},
		{"ReminderMinutesBeforeStart", ev.ReminderMinutes},
	}
	for _, s := range sets {
		if err := appt.Set(s.prop, s.value); err != nil {
			return err
		}
	}
	for prop, value := range map[string]string{
		"Location":          ev.Location,
		"Body":              ev.Body,
		"RequiredAttendees": ev.RequiredAttendees,
		"OptionalAttendees": ev.OptionalAttendees,
	} {
		if err := setIfNotEmpty(appt, prop, value); err != nil {
			return err
		}
	}
	if busy >= 0 {
		if err := appt.Set("BusyStatus", busy); err != nil {
			return err
		}
	}
	if invite {
		// olMeeting; invitations are only sent for meeting items.
		return appt.Set("MeetingStatus", 1)
	}
	return nil
}

// MeetingRequests lists inbox invitations whose calendar entry is still in a
// pending response state (see PendingResponseStatuses).
func (c *Client) MeetingRequests(ctx context.Context, limit int) ([]Record, error) {
	const op = "get_meeting_requests"
	limit = clampLimit(limit, DefaultSearchLimit, MaxEmailLimit)

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	items, err := s.folderItems(FolderInbox)
	if err != nil {
		return nil, err
	}
	filter := "[MessageClass] = '" + MessageClassMeetingRequest + "'"
	if items, err = restrict(op, items, filter); err != nil {
		return nil, err
	}
	defer items.Release()
	if err := sortItems(op, items, "[ReceivedTime]", true); err != nil {
		return nil, err
	}

	out := []Record{}
	err = scan(items, limit*queryScanFactor, func(item Object) bool {
		defer item.Release()
		rec, ok := c.meetingRequest(op, item)
		if ok {
			out = append(out, rec)
		}
		return len(out) < limit
	})
	if err != nil {
		return out, hostError(op, "failed to iterate items", err)
	}
	return out, nil
}

func (c *Client) meetingRequest(op string, item Object) (Record, bool) {
	class, err := getString(item, "MessageClass")
	if err != nil || class != MessageClassMeetingRequest {
		return nil, false
	}
	appt, err := callObject(item, "GetAssociatedAppointment", false)
	if err != nil {
		c.skip(op, "meeting_request", errorRecord("meeting request", err))
		return nil, false
	}
	defer appt.Release()

	status, err := getInt(appt, "ResponseStatus")
	if err != nil || !PendingResponseStatuses[status] {
		return nil, false
	}

	rec := FormatEvent(appt)
	if rec.IsError() {
		c.skip(op, "meeting_request", rec)
		return nil, false
	}
	msg := newSource(item)
	defer msg.close()
	for _, f := range meetingMessageFields {
		v, err := f.get(msg)
		if err != nil {
			v = f.def
		}
		rec[f.key] = v
	}
	return rec, true
}

var meetingMessageFields = []field{
	{key: "id", get: text("EntryID"), def: ""},
	{key: "organizer", get: text("SenderName"), def: nil},
	{key: "organizer_email", get: text("SenderEmailAddress"), def: ""},
	{key: "received_time", get: stamp("ReceivedTime"), def: nil},
}

// MeetingResponse is the outcome of RespondToMeeting.
type MeetingResponse struct {
	Subject      string
	Response     string
	ResponseSent bool
}

// RespondToMeeting accepts, declines or tentatively accepts the invitation
// (or calendar item) with entry ID id. The organizer is only notified when
// send is true; otherwise the calendar entry is saved locally.
func (c *Client) RespondToMeeting(ctx context.Context, id, response string, send bool, comment string) (*MeetingResponse, error) {
	const op = "respond_to_meeting"
	response = strings.ToLower(strings.TrimSpace(response))
	code, ok := responseCodes[response]
	if !ok {
		return nil, validationf(op, "invalid response_type %q (use accept, decline or tentative)", response)
	}
	if strings.TrimSpace(id) == "" {
		return nil, validationf(op, "meeting_id is required")
	}

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	item, err := s.itemByID(id)
	if err != nil {
		return nil, err
	}
	defer item.Release()

	appt := item
	if class, _ := getString(item, "MessageClass"); strings.HasPrefix(class, "IPM.Schedule.Meeting") {
		if appt, err = callObject(item, "GetAssociatedAppointment", true); err != nil {
			return nil, hostError(op, "failed to open the meeting's calendar entry", err)
		}
		defer appt.Release()
	}
	subject, _ := getString(appt, "Subject")

	v, err := appt.Call("Respond", code, true)
	if err != nil {
		return nil, hostError(op, "failed to respond to meeting", err)
	}
	reply, _ := v.(Object)
	defer release(reply)

	out := &MeetingResponse{Subject: subject, Response: response}
	if send && reply != nil {
		if err := setIfNotEmpty(reply, "Body", comment); err != nil {
			return nil, hostError(op, "failed to set response comment", err)
		}
		if _, err := reply.Call("Send"); err != nil {
			return nil, hostError(op, "failed to send meeting response", err)
		}
		out.ResponseSent = true
		return out, nil
	}
	if _, err := appt.Call("Save"); err != nil {
		return nil, hostError(op, "failed to save meeting response", err)
	}
	return out, nil
}
