package outlook

import (
	"strings"
	"unicode/utf8"
)

// source memoizes property reads on a single item so derived fields (body
// preview and length, reminder minutes) do not re-read the host.
type source struct {
	obj   Object
	cache map[string]readResult
}

type readResult struct {
	v   any
	err error
}

func newSource(obj Object) *source {
	return &source{obj: obj, cache: make(map[string]readResult)}
}

func (s *source) get(name string) (any, error) {
	if r, ok := s.cache[name]; ok {
		return r.v, r.err
	}
	v, err := s.obj.Get(name)
	s.cache[name] = readResult{v: v, err: err}
	return v, err
}

// close releases child objects read through the source.
func (s *source) close() {
	for _, r := range s.cache {
		if obj, ok := r.v.(Object); ok {
			release(obj)
		}
	}
}

// field extracts one record key. When get fails the record carries def.
type field struct {
	key string
	get func(*source) (any, error)
	def any
}

func text(prop string) func(*source) (any, error) {
	return func(s *source) (any, error) {
		v, err := s.get(prop)
		if err != nil {
			return nil, err
		}
		return asString(v), nil
	}
}

func number(prop string) func(*source) (any, error) {
	return func(s *source) (any, error) {
		v, err := s.get(prop)
		if err != nil {
			return nil, err
		}
		n, ok := asInt(v)
		if !ok {
			return nil, errNotNumber
		}
		return n, nil
	}
}

func flag(prop string) func(*source) (any, error) {
	return func(s *source) (any, error) {
		v, err := s.get(prop)
		if err != nil {
			return nil, err
		}
		b, ok := asBool(v)
		if !ok {
			return nil, errNotBool
		}
		return b, nil
	}
}

// stamp renders a date property, or nil when the host has no value.
func stamp(prop string) func(*source) (any, error) {
	return func(s *source) (any, error) {
		v, err := s.get(prop)
		if err != nil {
			return nil, err
		}
		if t, ok := asTime(v); ok {
			return t.Format(TimeLayout), nil
		}
		if v == nil {
			return nil, nil
		}
		return asString(v), nil
	}
}

func bodyPreview(prop string) func(*source) (any, error) {
	return func(s *source) (any, error) {
		v, err := s.get(prop)
		if err != nil {
			return nil, err
		}
		return Truncate(asString(v), BodyPreviewLength), nil
	}
}

func bodyLength(prop string) func(*source) (any, error) {
	return func(s *source) (any, error) {
		v, err := s.get(prop)
		if err != nil {
			return nil, err
		}
		return utf8.RuneCountInString(asString(v)), nil
	}
}

// childCount reads Count on a child collection such as Attachments.
func childCount(prop string) func(*source) (any, error) {
	return func(s *source) (any, error) {
		v, err := s.get(prop)
		if err != nil {
			return nil, err
		}
		coll, err := asObject(v, prop)
		if err != nil {
			return nil, err
		}
		return getInt(coll, "Count")
	}
}

func hasChildren(prop string) func(*source) (any, error) {
	count := childCount(prop)
	return func(s *source) (any, error) {
		n, err := count(s)
		if err != nil {
			return nil, err
		}
		return n.(int) > 0, nil
	}
}

// Truncate shortens s to at most n characters, appending "..." when
// anything was cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	var b strings.Builder
	count := 0
	for _, r := range s {
		if count == n {
			break
		}
		b.WriteRune(r)
		count++
	}
	b.WriteString("...")
	return b.String()
}

var (
	errNotNumber = &Error{Kind: KindHost, Msg: "value is not a number"}
	errNotBool   = &Error{Kind: KindHost, Msg: "value is not a boolean"}
)

var emailFields = []field{
	{key: "id", get: text("EntryID"), def: ""},
	{key: "subject", get: text("Subject"), def: ""},
	{key: "sender", get: text("SenderName"), def: ""},
	{key: "sender_email", get: text("SenderEmailAddress"), def: ""},
	{key: "recipients", get: text("To"), def: ""},
	{key: "cc", get: text("CC"), def: ""},
	{key: "bcc", get: text("BCC"), def: ""},
	{key: "received_time", get: stamp("ReceivedTime"), def: nil},
	{key: "sent_on", get: stamp("SentOn"), def: nil},
	{key: "body", get: bodyPreview("Body"), def: ""},
	{key: "body_length", get: bodyLength("Body"), def: 0},
	{key: "has_attachments", get: hasChildren("Attachments"), def: false},
	{key: "attachment_count", get: childCount("Attachments"), def: 0},
	{key: "importance", get: number("Importance"), def: ImportanceNormal},
	{key: "unread", get: flag("UnRead"), def: false},
	{key: "categories", get: text("Categories"), def: ""},
}

var eventFields = []field{
	{key: "id", get: text("EntryID"), def: ""},
	{key: "subject", get: text("Subject"), def: ""},
	{key: "start", get: stamp("Start"), def: nil},
	{key: "end", get: stamp("End"), def: nil},
	{key: "location", get: text("Location"), def: ""},
	{key: "organizer", get: text("Organizer"), def: nil},
	{key: "required_attendees", get: text("RequiredAttendees"), def: ""},
	{key: "optional_attendees", get: text("OptionalAttendees"), def: ""},
	{key: "body", get: bodyPreview("Body"), def: ""},
	{key: "body_length", get: bodyLength("Body"), def: 0},
	{key: "is_all_day_event", get: flag("AllDayEvent"), def: false},
	{key: "reminder_set", get: flag("ReminderSet"), def: false},
	{key: "reminder_minutes", get: reminderMinutes, def: nil},
	{key: "categories", get: text("Categories"), def: ""},
	{key: "busy_status", get: number("BusyStatus"), def: BusyBusy},
	{key: "response_status", get: number("ResponseStatus"), def: ResponseNone},
}

var contactFields = []field{
	{key: "id", get: text("EntryID"), def: ""},
	{key: "full_name", get: text("FullName"), def: ""},
	{key: "email1", get: text("Email1Address"), def: ""},
	{key: "email2", get: text("Email2Address"), def: ""},
	{key: "email3", get: text("Email3Address"), def: ""},
	{key: "company", get: text("CompanyName"), def: ""},
	{key: "job_title", get: text("JobTitle"), def: ""},
	{key: "business_phone", get: text("BusinessTelephoneNumber"), def: ""},
	{key: "mobile_phone", get: text("MobileTelephoneNumber"), def: ""},
	{key: "home_phone", get: text("HomeTelephoneNumber"), def: ""},
	{key: "business_address", get: text("BusinessAddress"), def: ""},
	{key: "categories", get: text("Categories"), def: ""},
}

// reminderMinutes is only meaningful while a reminder is set.
func reminderMinutes(s *source) (any, error) {
	set, err := flag("ReminderSet")(s)
	if err != nil {
		return nil, err
	}
	if !set.(bool) {
		return nil, nil
	}
	return number("ReminderMinutesBeforeStart")(s)
}
