package outlook

import (
	"fmt"
	"strings"
	"time"
)

// Layouts understood by Items.Restrict.
const (
	restrictDate     = "01/02/2006"
	restrictDateTime = "01/02/2006 15:04"
)

const unreadFilter = "[Unread] = True"

func receivedSince(t time.Time) string {
	return fmt.Sprintf("[ReceivedTime] >= '%s'", t.Format(restrictDate))
}

// eventWindow selects appointments that start at or after from and end at
// or before to.
func eventWindow(from, to time.Time, layout string) string {
	return fmt.Sprintf("[Start] >= '%s' AND [End] <= '%s'", from.Format(layout), to.Format(layout))
}

// mailSearchFilter builds a DASL filter matching query against subject,
// plain-text body and sender name.
func mailSearchFilter(query string) string {
	q := quoteFilterValue(query)
	return fmt.Sprintf(`@SQL=("urn:schemas:httpmail:subject" LIKE '%%%s%%' OR `+
		`"urn:schemas:httpmail:textdescription" LIKE '%%%s%%' OR `+
		`"urn:schemas:httpmail:fromname" LIKE '%%%s%%')`, q, q, q)
}

func quoteFilterValue(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// containsFold reports whether any of fields contains query, ignoring case.
func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 0, 0, t.Location())
}
