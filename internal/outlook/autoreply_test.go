package outlook_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/outlook/outlooktest"
)

// storeWithProperties wires a default store whose PropertyAccessor reads and
// writes values.
func storeWithProperties(o *outlooktest.Outlook, values map[string]any) *outlooktest.Object {
	pa := outlooktest.New("property accessor", nil)
	pa.On("GetProperty", func(args ...any) (any, error) {
		name, _ := args[0].(string)
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("property %s not found", name)
		}
		return v, nil
	})
	pa.On("SetProperty", func(args ...any) (any, error) {
		name, _ := args[0].(string)
		values[name] = args[1]
		return nil, nil
	})
	o.SetDefaultStore(outlooktest.New("store", map[string]any{"PropertyAccessor": pa}))
	return pa
}

func fullAutoReply() outlook.AutoReplyProperties {
	return outlook.AutoReplyProperties{
		Enabled:          outlook.PropOOFState,
		Scheduled:        "urn:oof:scheduled",
		StartTime:        "urn:oof:start",
		EndTime:          "urn:oof:end",
		InternalReply:    "urn:oof:internal",
		ExternalReply:    "urn:oof:external",
		ExternalAudience: "urn:oof:audience",
	}
}

func TestAutoReplyDefaultProperties(t *testing.T) {
	o := outlooktest.NewOutlook()
	storeWithProperties(o, map[string]any{outlook.PropOOFState: true})

	rec, err := newClient(o, outlook.Options{}).AutoReply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, rec["enabled"])
	assert.Nil(t, rec["scheduled"])
	assert.Nil(t, rec["internal_reply"])
	assert.Nil(t, rec["external_audience"])
	assert.Len(t, rec, 7)
}

func TestAutoReplyConfiguredProperties(t *testing.T) {
	start := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	o := outlooktest.NewOutlook()
	storeWithProperties(o, map[string]any{
		outlook.PropOOFState: false,
		"urn:oof:scheduled":  true,
		"urn:oof:start":      start,
		"urn:oof:internal":   "Back Monday",
		"urn:oof:audience":   1,
	})

	rec, err := newClient(o, outlook.Options{AutoReply: fullAutoReply()}).AutoReply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, rec["enabled"])
	assert.Equal(t, true, rec["scheduled"])
	assert.Equal(t, start.Local().Format(outlook.TimeLayout), rec["start_time"])
	assert.Nil(t, rec["end_time"])
	assert.Equal(t, "Back Monday", rec["internal_reply"])
	assert.Equal(t, "known", rec["external_audience"])
}

func TestAutoReplyUnsupported(t *testing.T) {
	o := outlooktest.NewOutlook()
	storeWithProperties(o, map[string]any{})

	_, err := newClient(o, outlook.Options{}).AutoReply(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, outlook.ErrUnsupported))
}

func TestSetAutoReplyValidatesBeforeConnecting(t *testing.T) {
	tests := []struct {
		name string
		opts outlook.Options
		u    outlook.AutoReplyUpdate
		want error
	}{
		{
			name: "scheduled without end",
			opts: outlook.Options{AutoReply: fullAutoReply()},
			u:    outlook.AutoReplyUpdate{Enabled: true, Scheduled: true, StartTime: "2025-04-01 08:00"},
			want: outlook.ErrValidation,
		},
		{
			name: "start after end",
			opts: outlook.Options{AutoReply: fullAutoReply()},
			u:    outlook.AutoReplyUpdate{Enabled: true, Scheduled: true, StartTime: "2025-04-05 08:00", EndTime: "2025-04-01 08:00"},
			want: outlook.ErrValidation,
		},
		{
			name: "unknown audience",
			opts: outlook.Options{AutoReply: fullAutoReply()},
			u:    outlook.AutoReplyUpdate{Enabled: true, ExternalAudience: "everyone"},
			want: outlook.ErrValidation,
		},
		{
			name: "reply text without property",
			u:    outlook.AutoReplyUpdate{Enabled: true, InternalReply: "Out today"},
			want: outlook.ErrUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := outlooktest.NewOutlook()
			err := newClient(o, tt.opts).SetAutoReply(context.Background(), tt.u)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Zero(t, o.Connects())
		})
	}
}

func TestSetAutoReply(t *testing.T) {
	values := map[string]any{}
	o := outlooktest.NewOutlook()
	pa := storeWithProperties(o, values)

	err := newClient(o, outlook.Options{AutoReply: fullAutoReply()}).SetAutoReply(context.Background(), outlook.AutoReplyUpdate{
		Enabled:          true,
		Scheduled:        true,
		StartTime:        "2025-04-01 08:00",
		EndTime:          "2025-04-05 18:00",
		InternalReply:    "Back on the 6th",
		ExternalAudience: "All",
	})
	require.NoError(t, err)

	assert.Equal(t, true, values[outlook.PropOOFState])
	assert.Equal(t, true, values["urn:oof:scheduled"])
	start, ok := values["urn:oof:start"].(time.Time)
	require.True(t, ok)
	assert.True(t, start.Equal(time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)))
	end, ok := values["urn:oof:end"].(time.Time)
	require.True(t, ok)
	assert.True(t, end.Equal(time.Date(2025, 4, 5, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Back on the 6th", values["urn:oof:internal"])
	assert.Equal(t, 2, values["urn:oof:audience"])
	_, wroteExternal := values["urn:oof:external"]
	assert.False(t, wroteExternal)
	assert.Equal(t, 6, pa.Called("SetProperty"))
}

func TestSetAutoReplyDisableOnly(t *testing.T) {
	values := map[string]any{outlook.PropOOFState: true}
	o := outlooktest.NewOutlook()
	pa := storeWithProperties(o, values)

	err := newClient(o, outlook.Options{}).SetAutoReply(context.Background(), outlook.AutoReplyUpdate{Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, false, values[outlook.PropOOFState])
	assert.Equal(t, 1, pa.Called("SetProperty"))
}
