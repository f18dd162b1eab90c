package outlook

import (
	"context"
	"strings"
	"time"
)

// PropOOFState is PR_OOF_STATE on the default store.
const PropOOFState = "http://schemas.microsoft.com/mapi/proptag/0x661D000B"

// AutoReplyProperties maps out-of-office settings to property schema names
// read and written through the default store's PropertyAccessor. Only
// Enabled has a standard MAPI property; the others depend on the mail
// server and are empty unless configured. An empty entry means the setting
// is not available on this host.
type AutoReplyProperties struct {
	Enabled          string
	Scheduled        string
	StartTime        string
	EndTime          string
	InternalReply    string
	ExternalReply    string
	ExternalAudience string
}

// DefaultAutoReplyProperties exposes only the enabled flag.
func DefaultAutoReplyProperties() AutoReplyProperties {
	return AutoReplyProperties{Enabled: PropOOFState}
}

// External audience values.
const (
	AudienceNone  = "none"
	AudienceKnown = "known"
	AudienceAll   = "all"
)

var audienceCodes = map[string]int{AudienceNone: 0, AudienceKnown: 1, AudienceAll: 2}

func audienceName(code int) string {
	for name, c := range audienceCodes {
		if c == code {
			return name
		}
	}
	return ""
}

// AutoReplyUpdate is a request to change out-of-office settings. Empty
// strings leave the corresponding setting untouched.
type AutoReplyUpdate struct {
	Enabled          bool
	Scheduled        bool
	StartTime        string
	EndTime          string
	InternalReply    string
	ExternalReply    string
	ExternalAudience string
}

// AutoReply reads the current out-of-office settings. Settings without a
// configured property are reported as null.
func (c *Client) AutoReply(ctx context.Context) (Record, error) {
	const op = "get_out_of_office"
	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	pa, err := c.propertyAccessor(s)
	if err != nil {
		return nil, err
	}
	defer pa.Release()

	enabled, err := pa.Call("GetProperty", c.autoReply.Enabled)
	if err != nil {
		return nil, unsupported(op, "out-of-office settings are not available on this Outlook store", err)
	}
	on, _ := asBool(enabled)
	rec := Record{"enabled": on}

	optional := []struct {
		key, prop string
		conv      func(any) any
	}{
		{"scheduled", c.autoReply.Scheduled, func(v any) any { b, _ := asBool(v); return b }},
		{"start_time", c.autoReply.StartTime, localStamp},
		{"end_time", c.autoReply.EndTime, localStamp},
		{"internal_reply", c.autoReply.InternalReply, func(v any) any { return asString(v) }},
		{"external_reply", c.autoReply.ExternalReply, func(v any) any { return asString(v) }},
		{"external_audience", c.autoReply.ExternalAudience, func(v any) any { n, _ := asInt(v); return audienceName(n) }},
	}
	for _, o := range optional {
		rec[o.key] = nil
		if o.prop == "" {
			continue
		}
		if v, err := pa.Call("GetProperty", o.prop); err == nil {
			rec[o.key] = o.conv(v)
		}
	}
	return rec, nil
}

func localStamp(v any) any {
	if t, ok := asTime(v); ok {
		return t.Local().Format(TimeLayout)
	}
	return nil
}

// SetAutoReply validates u completely before contacting Outlook, then
// writes only the settings u provides.
func (c *Client) SetAutoReply(ctx context.Context, u AutoReplyUpdate) error {
	const op = "set_out_of_office"
	writes, err := c.planAutoReply(op, u)
	if err != nil {
		return err
	}

	s, err := c.open(ctx, op)
	if err != nil {
		return err
	}
	defer s.Close()

	pa, err := c.propertyAccessor(s)
	if err != nil {
		return err
	}
	defer pa.Release()

	for _, w := range writes {
		if _, err := pa.Call("SetProperty", w.prop, w.value); err != nil {
			if w.prop == c.autoReply.Enabled {
				return unsupported(op, "out-of-office settings are not available on this Outlook store", err)
			}
			return hostError(op, "failed to write "+w.name, err)
		}
	}
	return nil
}

type propertyWrite struct {
	name  string
	prop  string
	value any
}

func (c *Client) planAutoReply(op string, u AutoReplyUpdate) ([]propertyWrite, error) {
	props := c.autoReply
	writes := []propertyWrite{{"enabled", props.Enabled, u.Enabled}}

	need := func(name, prop string) error {
		if prop == "" {
			return unsupported(op, name+" is not available on this Outlook store", nil)
		}
		return nil
	}

	if u.Scheduled {
		if strings.TrimSpace(u.StartTime) == "" || strings.TrimSpace(u.EndTime) == "" {
			return nil, validationf(op, "scheduled out-of-office requires both start_time and end_time")
		}
	}
	var start, end time.Time
	now := c.now()
	var err error
	if u.StartTime != "" {
		if start, err = parseDateArg(op, "start_time", u.StartTime, now); err != nil {
			return nil, err
		}
	}
	if u.EndTime != "" {
		if end, err = parseDateArg(op, "end_time", u.EndTime, now); err != nil {
			return nil, err
		}
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return nil, validationf(op, "start_time must be before end_time")
	}
	audience := strings.ToLower(strings.TrimSpace(u.ExternalAudience))
	if audience != "" {
		if _, ok := audienceCodes[audience]; !ok {
			return nil, validationf(op, "invalid external_audience %q (use none, known or all)", u.ExternalAudience)
		}
	}

	if u.Scheduled {
		if err := need("scheduled out-of-office", props.Scheduled); err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{"scheduled", props.Scheduled, true})
	} else if props.Scheduled != "" {
		writes = append(writes, propertyWrite{"scheduled", props.Scheduled, false})
	}
	if !start.IsZero() {
		if err := need("start_time", props.StartTime); err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{"start_time", props.StartTime, start.UTC()})
	}
	if !end.IsZero() {
		if err := need("end_time", props.EndTime); err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{"end_time", props.EndTime, end.UTC()})
	}
	if u.InternalReply != "" {
		if err := need("internal_reply", props.InternalReply); err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{"internal_reply", props.InternalReply, u.InternalReply})
	}
	if u.ExternalReply != "" {
		if err := need("external_reply", props.ExternalReply); err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{"external_reply", props.ExternalReply, u.ExternalReply})
	}
	if audience != "" {
		if err := need("external_audience", props.ExternalAudience); err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{"external_audience", props.ExternalAudience, audienceCodes[audience]})
	}
	return writes, nil
}

func (c *Client) propertyAccessor(s *session) (Object, error) {
	store, err := s.defaultStore()
	if err != nil {
		return nil, err
	}
	defer store.Release()
	pa, err := getObject(store, "PropertyAccessor")
	if err != nil {
		return nil, unsupported(s.op, "the default store does not expose a property accessor", err)
	}
	return pa, nil
}
