package outlook

// Default folder identifiers (OlDefaultFolders).
const (
	FolderDeleted  = 3
	FolderOutbox   = 4
	FolderSent     = 5
	FolderInbox    = 6
	FolderCalendar = 9
	FolderContacts = 10
	FolderDrafts   = 16
	FolderJunk     = 23
)

// Item types accepted by Application.CreateItem (OlItemType).
const (
	ItemMail        = 0
	ItemAppointment = 1
	ItemContact     = 2
)

// Mail importance (OlImportance).
const (
	ImportanceLow    = 0
	ImportanceNormal = 1
	ImportanceHigh   = 2
)

// Meeting response codes (OlMeetingResponse / OlResponseStatus).
const (
	ResponseNone      = 0
	ResponseOrganized = 1
	ResponseTentative = 2
	ResponseAccepted  = 3
	ResponseDeclined  = 4
	ResponseNotResp   = 5
)

// Busy status (OlBusyStatus).
const (
	BusyFree        = 0
	BusyTentative   = 1
	BusyBusy        = 2
	BusyOutOfOffice = 3
)

// MessageClassMeetingRequest identifies meeting invitations in the inbox.
const MessageClassMeetingRequest = "IPM.Schedule.Meeting.Request"

// Listing defaults and caps.
const (
	DefaultEmailLimit      = 5
	DefaultSearchLimit     = 20
	MaxEmailLimit          = 50
	DefaultContactLimit    = 50
	MaxContactLimit        = 200
	DefaultEventLimit      = 50
	MaxEventLimit          = 200
	BodyPreviewLength      = 500
	DefaultDaysBack        = 2
	DefaultDaysAhead       = 7
	DefaultDaysRange       = 30
	DefaultReminderMinutes = 15

	unreadScanFactor  = 2
	contactScanFactor = 3
	queryScanFactor   = 5
)

var importanceNames = map[string]int{
	"low":    ImportanceLow,
	"normal": ImportanceNormal,
	"high":   ImportanceHigh,
}

var mailFolderNames = map[string]int{
	"inbox":   FolderInbox,
	"sent":    FolderSent,
	"drafts":  FolderDrafts,
	"deleted": FolderDeleted,
}

var responseCodes = map[string]int{
	"accept":    ResponseAccepted,
	"decline":   ResponseDeclined,
	"tentative": ResponseTentative,
}

var busyStatusNames = map[string]int{
	"free":          BusyFree,
	"tentative":     BusyTentative,
	"busy":          BusyBusy,
	"out_of_office": BusyOutOfOffice,
	"oof":           BusyOutOfOffice,
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
