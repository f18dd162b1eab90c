package outlook

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var naturalDates = newNaturalParser()

func newNaturalParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseDateTime accepts strict timestamps ("2025-03-14 15:00",
// "03/14/2025 3:00 PM", RFC 3339) and loose phrases ("tomorrow at 3pm",
// "next friday 10:00"). Phrases are resolved relative to now and must make
// up the whole input.
func ParseDateTime(input string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := dateparse.ParseIn(s, now.Location()); err == nil {
		return t, nil
	}
	r, err := naturalDates.Parse(s, now)
	if err != nil {
		return time.Time{}, err
	}
	if r == nil {
		return time.Time{}, errors.New("unrecognised date")
	}
	if r.Index != 0 || len(strings.TrimSpace(r.Text)) != len(s) {
		return time.Time{}, fmt.Errorf("unrecognised date: only %q is a date", strings.TrimSpace(r.Text))
	}
	return r.Time, nil
}

func parseDateArg(op, name, input string, now time.Time) (time.Time, error) {
	t, err := ParseDateTime(input, now)
	if err != nil {
		return time.Time{}, validationf(op, "invalid %s %q: %v", name, input, err)
	}
	return t, nil
}
