package outlook

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailSearchFilter(t *testing.T) {
	got := mailSearchFilter("O'Brien")
	assert.Contains(t, got, `"urn:schemas:httpmail:subject" LIKE '%O''Brien%'`)
	assert.Contains(t, got, `"urn:schemas:httpmail:textdescription" LIKE '%O''Brien%'`)
	assert.Contains(t, got, `"urn:schemas:httpmail:fromname" LIKE '%O''Brien%'`)
	assert.True(t, len(got) > 5 && got[:5] == "@SQL=")
}

func TestEventWindow(t *testing.T) {
	from := time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC)
	to := time.Date(2025, 3, 21, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "[Start] >= '03/14/2025 09:05' AND [End] <= '03/21/2025 23:59'", eventWindow(from, to, restrictDateTime))
	assert.Equal(t, "[Start] >= '03/14/2025' AND [End] <= '03/21/2025'", eventWindow(from, to, restrictDate))
}

func TestReceivedSince(t *testing.T) {
	since := time.Date(2025, 1, 2, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "[ReceivedTime] >= '01/02/2025'", receivedSince(since))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, containsFold("budget", "Q3 BUDGET review"))
	assert.True(t, containsFold("acme", "", "Acme Corp"))
	assert.False(t, containsFold("budget", "Q3 review", "notes"))
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), startOfDay(now))
	assert.Equal(t, time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC), endOfDay(now))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 5, "hello..."},
		{"runes", "héllo wörld", 4, "héll..."},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 5, clampLimit(0, 5, 50))
	assert.Equal(t, 5, clampLimit(-3, 5, 50))
	assert.Equal(t, 12, clampLimit(12, 5, 50))
	assert.Equal(t, 50, clampLimit(500, 5, 50))
}

func TestParseDateTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	got, err := ParseDateTime("2025-03-14 15:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC), got)

	got, err = ParseDateTime("2025-03-14T15:00:00Z", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)))

	got, err = ParseDateTime("tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Day())

	_, err = ParseDateTime("   ", now)
	assert.Error(t, err)

	_, err = ParseDateTime("gibberish xyz", now)
	assert.Error(t, err)
}

func TestParseDateTime_RejectsPartialPhrases(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	for _, input := range []string{"banana tomorrow", "whenever at 5pm", "asdf", "tomorrow banana"} {
		_, err := ParseDateTime(input, now)
		assert.Error(t, err, input)
	}

	got, err := ParseDateTime("  tomorrow  ", now)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Day())
}

func TestParseDateArgIsValidation(t *testing.T) {
	_, err := parseDateArg("create_calendar_event", "start_time", "gibberish xyz", time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "start_time")
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("RPC server unavailable")
	err := fmt.Errorf("wrapped: %w", connectionError("get_inbox_emails", cause))

	assert.True(t, errors.Is(err, ErrConnection))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindConnection, KindOf(err))
	assert.Equal(t, KindHost, KindOf(errors.New("plain")))

	var oe *Error
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "failed to connect to Outlook: RPC server unavailable", oe.Message())
	assert.Equal(t, "get_inbox_emails: failed to connect to Outlook: RPC server unavailable", oe.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "host", KindHost.String())
	assert.Equal(t, "connection", KindConnection.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "unsupported", KindUnsupported.String())
}

func TestAsConversions(t *testing.T) {
	n, ok := asInt(int32(7))
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = asInt(2.6)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = asInt("x")
	assert.False(t, ok)

	b, ok := asBool(int16(-1))
	assert.True(t, ok)
	assert.True(t, b)

	assert.Equal(t, "a, b", asString([]string{"a", "b"}))
	assert.Equal(t, "", asString(nil))
	assert.Equal(t, "2025-01-02 03:04:05", asString(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
}
