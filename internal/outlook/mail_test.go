package outlook_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/outlook/outlooktest"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newClient(o *outlooktest.Outlook, opts outlook.Options) *outlook.Client {
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	return outlook.NewClient(o.Connector(), opts)
}

// mails returns n messages received one hour apart, oldest first.
func mails(n int, props func(i int) map[string]any) []outlook.Object {
	out := make([]outlook.Object, n)
	for i := 0; i < n; i++ {
		p := map[string]any{
			"EntryID":      fmt.Sprintf("M-%d", i),
			"Subject":      fmt.Sprintf("Message %d", i),
			"ReceivedTime": testNow.Add(time.Duration(i-n) * time.Hour),
			"SentOn":       testNow.Add(time.Duration(i-n) * time.Hour),
			"UnRead":       false,
		}
		if props != nil {
			for k, v := range props(i) {
				p[k] = v
			}
		}
		out[i] = outlooktest.Mail(p)
	}
	return out
}

func ids(recs []outlook.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.String("id")
	}
	return out
}

func TestInboxEmailsNewestFirst(t *testing.T) {
	o := outlooktest.NewOutlook()
	items := outlooktest.NewItems(mails(8, nil)...)
	o.SetDefaultItems(outlook.FolderInbox, items)

	recs, err := newClient(o, outlook.Options{}).InboxEmails(context.Background(), 3, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-7", "M-6", "M-5"}, ids(recs))
	assert.Equal(t, []string{"[ReceivedTime]"}, items.Log.Sorts())
	assert.Empty(t, items.Log.Filters())
	assert.Equal(t, 3, items.Log.Visited())
}

func TestInboxEmailsLimitIsCapped(t *testing.T) {
	o := outlooktest.NewOutlook()
	o.SetDefaultItems(outlook.FolderInbox, outlooktest.NewItems(mails(60, nil)...))
	c := newClient(o, outlook.Options{})

	recs, err := c.InboxEmails(context.Background(), 500, false)
	require.NoError(t, err)
	assert.Len(t, recs, outlook.MaxEmailLimit)

	recs, err = c.InboxEmails(context.Background(), 0, false)
	require.NoError(t, err)
	assert.Len(t, recs, outlook.DefaultEmailLimit)
}

func TestInboxEmailsUnreadOnly(t *testing.T) {
	o := outlooktest.NewOutlook()
	items := outlooktest.NewItems(mails(6, func(i int) map[string]any {
		return map[string]any{"UnRead": i == 1 || i == 4}
	})...)
	o.SetDefaultItems(outlook.FolderInbox, items)

	recs, err := newClient(o, outlook.Options{}).InboxEmails(context.Background(), 5, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-4", "M-1"}, ids(recs))
	assert.Equal(t, []string{"[Unread] = True"}, items.Log.Filters())
	for _, r := range recs {
		assert.Equal(t, true, r["unread"])
	}
}

type skipCounter struct {
	skipped map[string]int
	lookups map[string]int
}

func newSkipCounter() *skipCounter {
	return &skipCounter{skipped: map[string]int{}, lookups: map[string]int{}}
}

func (s *skipCounter) FolderCacheLookup(result string) { s.lookups[result]++ }
func (s *skipCounter) ItemSkipped(entity string)       { s.skipped[entity]++ }

func TestInboxEmailsSkipsUnreadableItems(t *testing.T) {
	o := outlooktest.NewOutlook()
	members := mails(4, nil)
	members[2].(*outlooktest.Object).Fail("Class", errors.New("item was deleted"))
	o.SetDefaultItems(outlook.FolderInbox, outlooktest.NewItems(members...))

	obs := newSkipCounter()
	recs, err := newClient(o, outlook.Options{Observer: obs}).InboxEmails(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-3", "M-1", "M-0"}, ids(recs))
	assert.Equal(t, 1, obs.skipped["email"])
}

func TestSentEmails(t *testing.T) {
	o := outlooktest.NewOutlook()
	items := outlooktest.NewItems(mails(3, nil)...)
	o.SetDefaultItems(outlook.FolderSent, items)

	recs, err := newClient(o, outlook.Options{}).SentEmails(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-2", "M-1", "M-0"}, ids(recs))
	assert.Equal(t, []string{"[SentOn]"}, items.Log.Sorts())
}

func TestConnectionFailure(t *testing.T) {
	o := outlooktest.NewOutlook()
	o.ConnectErr = errors.New("class not registered")

	_, err := newClient(o, outlook.Options{}).InboxEmails(context.Background(), 5, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, outlook.ErrConnection))
	assert.Contains(t, err.Error(), "failed to connect to Outlook")

	assert.True(t, errors.Is(newClient(o, outlook.Options{}).Ping(context.Background()), outlook.ErrConnection))
}

func TestSearchEmailsCaseInsensitive(t *testing.T) {
	o := outlooktest.NewOutlook()
	inbox := outlooktest.NewItems(mails(3, func(i int) map[string]any {
		return map[string]any{"Subject": []string{"Q3 BUDGET review", "Lunch", "budget draft"}[i]}
	})...)
	o.SetDefaultItems(outlook.FolderInbox, inbox)

	recs, err := newClient(o, outlook.Options{}).SearchEmails(context.Background(), "Budget", "inbox", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-2", "M-0"}, ids(recs))
	require.Len(t, inbox.Log.Filters(), 1)
	assert.Contains(t, inbox.Log.Filters()[0], "LIKE '%Budget%'")
}

func TestSearchEmailsAllFolders(t *testing.T) {
	o := outlooktest.NewOutlook()
	hit := func(prefix string) *outlooktest.Items {
		return outlooktest.NewItems(outlooktest.Mail(map[string]any{"EntryID": prefix, "Subject": "invoice"}))
	}
	o.SetDefaultItems(outlook.FolderInbox, hit("inbox"))
	o.SetDefaultItems(outlook.FolderSent, hit("sent"))
	o.SetDefaultItems(outlook.FolderDrafts, hit("drafts"))
	o.SetDefaultItems(outlook.FolderDeleted, hit("deleted"))

	recs, err := newClient(o, outlook.Options{}).SearchEmails(context.Background(), "invoice", "ALL", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox", "sent", "drafts"}, ids(recs))

	recs, err = newClient(o, outlook.Options{}).SearchEmails(context.Background(), "invoice", "somewhere", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox"}, ids(recs))
}

func TestSearchEmailsRequiresQuery(t *testing.T) {
	o := outlooktest.NewOutlook()
	_, err := newClient(o, outlook.Options{}).SearchEmails(context.Background(), "  ", "inbox", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, outlook.ErrValidation))
	assert.Zero(t, o.Connects())
}

func mailbox(o *outlooktest.Outlook, store string, projectItems *outlooktest.Items) *outlooktest.Object {
	projects := outlooktest.Folder("Projects")
	if projectItems != nil {
		projects.Props["Items"] = projectItems
	}
	root := outlooktest.Folder("Root", outlooktest.Folder("Inbox", projects))
	o.AddStore(outlooktest.Store(store, root))
	return projects
}

func TestSearchFolder(t *testing.T) {
	o := outlooktest.NewOutlook()
	items := outlooktest.NewItems(mails(4, func(i int) map[string]any {
		return map[string]any{"Body": []string{"kickoff notes", "", "KICKOFF agenda", "misc"}[i]}
	})...)
	mailbox(o, "Mailbox", items)
	c := newClient(o, outlook.Options{})

	recs, err := c.SearchFolder(context.Background(), outlook.FolderSearch{Path: "Inbox/Projects", Query: "kickoff", DaysBack: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"M-2", "M-0"}, ids(recs))
	assert.Equal(t, []string{"[ReceivedTime] >= '03/07/2025'"}, items.Log.Filters())
	assert.Equal(t, 1, c.Folders().Len())
}

func TestSearchFolderWithoutWindow(t *testing.T) {
	o := outlooktest.NewOutlook()
	items := outlooktest.NewItems(mails(2, nil)...)
	mailbox(o, "Mailbox", items)

	recs, err := newClient(o, outlook.Options{}).SearchFolder(context.Background(), outlook.FolderSearch{Path: "Inbox/Projects"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Empty(t, items.Log.Filters())
}

func TestSearchFolderNotFound(t *testing.T) {
	o := outlooktest.NewOutlook()
	mailbox(o, "Mailbox", nil)

	_, err := newClient(o, outlook.Options{}).SearchFolder(context.Background(), outlook.FolderSearch{Path: "Inbox/Missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, outlook.ErrNotFound))

	var oe *outlook.Error
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "Folder 'Inbox/Missing' not found", oe.Msg)
	assert.Equal(t, outlook.FolderNotFoundHint, oe.Hint)
}

func TestGetEmail(t *testing.T) {
	o := outlooktest.NewOutlook()
	o.AddItem("M-1", outlooktest.Mail(map[string]any{"EntryID": "M-1", "Subject": "hello"},
		outlooktest.Attachment("a.txt", 10), outlooktest.Attachment("b.png", 20)))
	c := newClient(o, outlook.Options{})

	rec, err := c.GetEmail(context.Background(), "M-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", rec["subject"])
	atts, ok := rec["attachments"].([]outlook.Record)
	require.True(t, ok)
	require.Len(t, atts, 2)
	assert.Equal(t, outlook.Record{"index": 2, "filename": "b.png", "size": 20, "type": 1}, atts[1])

	_, err = c.GetEmail(context.Background(), "nope")
	assert.True(t, errors.Is(err, outlook.ErrNotFound))
}

func TestSendWithAttachmentsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o600))
	missing := filepath.Join(dir, "missing.txt")

	o := outlooktest.NewOutlook()
	_, err := newClient(o, outlook.Options{}).SendWithAttachments(context.Background(), outlook.Message{
		To:          "bob@example.com",
		Subject:     "files",
		Attachments: []string{present, missing},
	}, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, outlook.ErrValidation))

	var oe *outlook.Error
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, []string{missing}, oe.Details["missing_files"])
	assert.Zero(t, o.Connects())
	assert.Empty(t, o.Created())
}

func TestSendWithAttachments(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o600))

	o := outlooktest.NewOutlook()
	_, err := newClient(o, outlook.Options{}).SendWithAttachments(context.Background(), outlook.Message{
		To:          "bob@example.com",
		Subject:     "report",
		Body:        "attached",
		Importance:  "HIGH",
		Attachments: []string{file},
	}, true)
	require.NoError(t, err)

	created := o.Created()
	require.Len(t, created, 1)
	item := created[0]
	assert.Equal(t, 1, item.Called("Send"))
	assert.Equal(t, outlook.ImportanceHigh, item.Props["Importance"])
	assert.False(t, item.WasSet("CC"))

	atts := item.Props["Attachments"].(*outlooktest.Object)
	calls := atts.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{file}, calls[0].Args)
}

func TestSendWithAttachmentsRequiresAttachment(t *testing.T) {
	o := outlooktest.NewOutlook()
	_, err := newClient(o, outlook.Options{}).SendWithAttachments(context.Background(), outlook.Message{To: "a@b.c"}, true)
	assert.True(t, errors.Is(err, outlook.ErrValidation))
}

func TestCreateDraft(t *testing.T) {
	o := outlooktest.NewOutlook()
	id, err := newClient(o, outlook.Options{}).CreateDraft(context.Background(), outlook.Message{
		To: "bob@example.com", Subject: "draft", CC: "carol@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "NEW-1", id)

	item := o.Created()[0]
	assert.Equal(t, 1, item.Called("Save"))
	assert.Zero(t, item.Called("Send"))
	assert.Equal(t, "carol@example.com", item.Props["CC"])
	assert.Equal(t, outlook.ImportanceNormal, item.Props["Importance"])
}

func TestSendEmailRequiresRecipient(t *testing.T) {
	o := outlooktest.NewOutlook()
	err := newClient(o, outlook.Options{}).SendEmail(context.Background(), outlook.Message{Subject: "x"})
	assert.True(t, errors.Is(err, outlook.ErrValidation))
	assert.Zero(t, o.Connects())
}

func TestSaveAttachment(t *testing.T) {
	dir := t.TempDir()
	att := outlooktest.Attachment("report.pdf", 100)
	o := outlooktest.NewOutlook()
	o.AddItem("M-1", outlooktest.Mail(map[string]any{"EntryID": "M-1"}, att))
	c := newClient(o, outlook.Options{})

	path, err := c.SaveAttachment(context.Background(), "M-1", 1, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), path)
	require.Equal(t, 1, att.Called("SaveAsFile"))
	assert.Equal(t, []any{path}, att.Calls()[0].Args)

	_, err = c.SaveAttachment(context.Background(), "M-1", 2, dir)
	assert.True(t, errors.Is(err, outlook.ErrNotFound))

	_, err = c.SaveAttachment(context.Background(), "M-1", 1, filepath.Join(dir, "nope"))
	assert.True(t, errors.Is(err, outlook.ErrValidation))
}

func TestListAttachments(t *testing.T) {
	o := outlooktest.NewOutlook()
	o.AddItem("M-1", outlooktest.Mail(nil, outlooktest.Attachment("a.txt", 3)))

	atts, err := newClient(o, outlook.Options{}).ListAttachments(context.Background(), "M-1")
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "a.txt", atts[0]["filename"])
	assert.Equal(t, 1, atts[0]["index"])
}

func TestImportanceFor(t *testing.T) {
	assert.Equal(t, outlook.ImportanceLow, outlook.ImportanceFor("low"))
	assert.Equal(t, outlook.ImportanceHigh, outlook.ImportanceFor(" High "))
	assert.Equal(t, outlook.ImportanceNormal, outlook.ImportanceFor(""))
	assert.Equal(t, outlook.ImportanceNormal, outlook.ImportanceFor("urgent"))
}
