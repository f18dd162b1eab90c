package outlook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FolderNotFoundHint points callers at the folder discovery tool.
const FolderNotFoundHint = "Use list_outlook_folders to see available folders."

// InboxEmails returns the most recent inbox messages, newest first.
func (c *Client) InboxEmails(ctx context.Context, limit int, unreadOnly bool) ([]Record, error) {
	const op = "get_inbox_emails"
	limit = clampLimit(limit, DefaultEmailLimit, MaxEmailLimit)

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	items, err := s.folderItems(FolderInbox)
	if err != nil {
		return nil, err
	}
	budget := limit
	var keep func(Object) bool
	if unreadOnly {
		if items, err = restrict(op, items, unreadFilter); err != nil {
			return nil, err
		}
		budget = limit * unreadScanFactor
		keep = isUnread
	}
	defer items.Release()

	if err := sortItems(op, items, "[ReceivedTime]", true); err != nil {
		return nil, err
	}
	return c.collect(op, "email", items, limit, budget, keep, FormatEmail)
}

// SentEmails returns the most recently sent messages, newest first.
func (c *Client) SentEmails(ctx context.Context, limit int) ([]Record, error) {
	const op = "get_sent_emails"
	limit = clampLimit(limit, DefaultEmailLimit, MaxEmailLimit)

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	items, err := s.folderItems(FolderSent)
	if err != nil {
		return nil, err
	}
	defer items.Release()

	if err := sortItems(op, items, "[SentOn]", true); err != nil {
		return nil, err
	}
	return c.collect(op, "email", items, limit, limit, nil, FormatEmail)
}

// SearchEmails finds messages whose subject, body or sender name contains
// query. folder is one of inbox, sent, drafts, deleted or all (inbox, sent
// and drafts in that order); anything else searches the inbox.
func (c *Client) SearchEmails(ctx context.Context, query, folder string, limit int) ([]Record, error) {
	const op = "search_emails"
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationf(op, "query is required")
	}
	limit = clampLimit(limit, DefaultSearchLimit, MaxEmailLimit)

	var ids []int
	if strings.EqualFold(folder, "all") {
		ids = []int{FolderInbox, FolderSent, FolderDrafts}
	} else if id, ok := mailFolderNames[strings.ToLower(folder)]; ok {
		ids = []int{id}
	} else {
		ids = []int{FolderInbox}
	}

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	filter := mailSearchFilter(query)
	out := []Record{}
	for _, id := range ids {
		recs, err := c.searchDefaultFolder(s, id, filter, query, limit-len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (c *Client) searchDefaultFolder(s *session, id int, filter, query string, limit int) ([]Record, error) {
	items, err := s.folderItems(id)
	if err != nil {
		return nil, err
	}
	if items, err = restrict(s.op, items, filter); err != nil {
		return nil, err
	}
	defer items.Release()
	if err := sortItems(s.op, items, "[ReceivedTime]", true); err != nil {
		return nil, err
	}
	return c.collect(s.op, "email", items, limit, limit*queryScanFactor, mailMatcher(query), FormatEmail)
}

// FolderSearch describes a search in a custom folder.
type FolderSearch struct {
	// Path is the slash-separated folder path relative to a store root.
	Path string
	// Query, when set, must appear in the subject, body or sender name.
	Query string
	Limit int
	// DaysBack restricts results to messages received in the last DaysBack
	// days. Zero or less searches the whole folder, which can be slow.
	DaysBack int
	// Refresh skips the folder cache and resolves Path again.
	Refresh bool
}

// SearchFolder lists or searches a custom folder resolved through the
// folder cache.
func (c *Client) SearchFolder(ctx context.Context, q FolderSearch) ([]Record, error) {
	const op = "search_emails_in_custom_folder"
	if strings.TrimSpace(q.Path) == "" {
		return nil, validationf(op, "folder_path is required")
	}
	limit := clampLimit(q.Limit, DefaultSearchLimit, MaxEmailLimit)

	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	folder, err := c.folders.Resolve(s.ns, q.Path, !q.Refresh)
	if err != nil {
		return nil, hostError(op, "failed to look up folder", err)
	}
	if folder == nil {
		return nil, notFound(op, "Folder '"+q.Path+"' not found", FolderNotFoundHint)
	}

	items, err := getObject(folder, "Items")
	if err != nil {
		return nil, hostError(op, "failed to read folder items", err)
	}
	if q.DaysBack > 0 {
		since := c.now().AddDate(0, 0, -q.DaysBack)
		if items, err = restrict(op, items, receivedSince(since)); err != nil {
			return nil, err
		}
	}
	defer items.Release()
	if err := sortItems(op, items, "[ReceivedTime]", true); err != nil {
		return nil, err
	}

	budget := limit
	var keep func(Object) bool
	if query := strings.TrimSpace(q.Query); query != "" {
		budget = limit * queryScanFactor
		keep = mailMatcher(query)
	}
	return c.collect(op, "email", items, limit, budget, keep, FormatEmail)
}

// GetEmail returns one message with its attachment list.
func (c *Client) GetEmail(ctx context.Context, id string) (Record, error) {
	const op = "get_email"
	if strings.TrimSpace(id) == "" {
		return nil, validationf(op, "email_id is required")
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

	rec := FormatEmail(item)
	if rec.IsError() {
		return nil, hostError(op, rec.String("error"), nil)
	}
	if atts, err := attachmentsOf(item); err == nil {
		rec["attachments"] = atts
	} else {
		rec["attachments"] = []Record{}
	}
	return rec, nil
}

// Message is an outgoing mail.
type Message struct {
	To         string
	Subject    string
	Body       string
	CC         string
	BCC        string
	Importance string
	// Attachments are local file paths. Every path must exist.
	Attachments []string
}

// SendEmail composes and sends msg.
func (c *Client) SendEmail(ctx context.Context, msg Message) error {
	_, err := c.deliver(ctx, "send_email", msg, true)
	return err
}

// CreateDraft composes msg and saves it to Drafts, returning its entry ID.
func (c *Client) CreateDraft(ctx context.Context, msg Message) (string, error) {
	return c.deliver(ctx, "create_draft_email", msg, false)
}

// SendWithAttachments validates every attachment path before touching
// Outlook. If any path is missing nothing is created and the error lists the
// missing files. With send false the message is saved as a draft.
func (c *Client) SendWithAttachments(ctx context.Context, msg Message, send bool) (string, error) {
	const op = "send_email_with_attachments"
	if len(msg.Attachments) == 0 {
		return "", validationf(op, "at least one attachment is required")
	}
	return c.deliver(ctx, op, msg, send)
}

func (c *Client) deliver(ctx context.Context, op string, msg Message, send bool) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", validationf(op, "to is required")
	}
	paths, err := checkAttachments(op, msg.Attachments)
	if err != nil {
		return "", err
	}

	s, err := c.open(ctx, op)
	if err != nil {
		return "", err
	}
	defer s.Close()

	item, err := s.createItem(ItemMail)
	if err != nil {
		return "", err
	}
	defer item.Release()

	if err := composeMail(item, msg, paths); err != nil {
		return "", hostError(op, "failed to compose message", err)
	}
	if send {
		if _, err := item.Call("Send"); err != nil {
			return "", hostError(op, "failed to send message", err)
		}
		return "", nil
	}
	if _, err := item.Call("Save"); err != nil {
		return "", hostError(op, "failed to save draft", err)
	}
	id, _ := getString(item, "EntryID")
	return id, nil
}

func composeMail(item Object, msg Message, attachments []string) error {
	if err := item.Set("To", msg.To); err != nil {
		return err
	}
	if err := item.Set("Subject", msg.Subject); err != nil {
		return err
	}
	if err := item.Set("Body", msg.Body); err != nil {
		return err
	}
	if err := setIfNotEmpty(item, "CC", msg.CC); err != nil {
		return err
	}
	if err := setIfNotEmpty(item, "BCC", msg.BCC); err != nil {
		return err
	}
	if err := item.Set("Importance", ImportanceFor(msg.Importance)); err != nil {
		return err
	}
	if len(attachments) == 0 {
		return nil
	}
	atts, err := getObject(item, "Attachments")
	if err != nil {
		return err
	}
	defer atts.Release()
	for _, p := range attachments {
		added, err := atts.Call("Add", p)
		if err != nil {
			return err
		}
		if obj, ok := added.(Object); ok {
			obj.Release()
		}
	}
	return nil
}

// ImportanceFor maps low, normal or high to the host constant. Unknown
// values are treated as normal.
func ImportanceFor(name string) int {
	if v, ok := importanceNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return v
	}
	return ImportanceNormal
}

// checkAttachments resolves every path to an absolute file path, failing
// with the full list of missing files.
func checkAttachments(op string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	resolved := make([]string, 0, len(paths))
	var missing []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			missing = append(missing, p)
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			missing = append(missing, p)
			continue
		}
		resolved = append(resolved, abs)
	}
	if len(missing) > 0 {
		e := validationf(op, "attachment files not found: %s", strings.Join(missing, ", "))
		e.Details = map[string]any{"missing_files": missing}
		return nil, e
	}
	return resolved, nil
}

// ListAttachments returns the attachments of the message with entry ID id.
func (c *Client) ListAttachments(ctx context.Context, id string) ([]Record, error) {
	const op = "list_email_attachments"
	if strings.TrimSpace(id) == "" {
		return nil, validationf(op, "email_id is required")
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

	atts, err := attachmentsOf(item)
	if err != nil {
		return nil, hostError(op, "failed to read attachments", err)
	}
	return atts, nil
}

func attachmentsOf(item Object) ([]Record, error) {
	coll, err := getObject(item, "Attachments")
	if err != nil {
		return nil, err
	}
	defer coll.Release()

	out := []Record{}
	index := 0
	err = each(coll, func(att Object) bool {
		defer att.Release()
		index++
		out = append(out, formatAttachment(att, index))
		return true
	})
	return out, err
}

// SaveAttachment writes the attachment at 1-based index to dir and returns
// the written path.
func (c *Client) SaveAttachment(ctx context.Context, id string, index int, dir string) (string, error) {
	const op = "save_email_attachment"
	if strings.TrimSpace(id) == "" {
		return "", validationf(op, "email_id is required")
	}
	if index < 1 {
		return "", validationf(op, "attachment_index must be 1 or greater")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", validationf(op, "invalid directory %q", dir)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", validationf(op, "directory %q does not exist", dir)
	}

	s, err := c.open(ctx, op)
	if err != nil {
		return "", err
	}
	defer s.Close()

	item, err := s.itemByID(id)
	if err != nil {
		return "", err
	}
	defer item.Release()

	coll, err := getObject(item, "Attachments")
	if err != nil {
		return "", hostError(op, "failed to read attachments", err)
	}
	defer coll.Release()
	count, err := getInt(coll, "Count")
	if err != nil {
		return "", hostError(op, "failed to read attachments", err)
	}
	if index > count {
		return "", notFound(op, "attachment index out of range", "Use list_email_attachments to see available attachments.")
	}
	att, err := callObject(coll, "Item", index)
	if err != nil {
		return "", hostError(op, "failed to open attachment", err)
	}
	defer att.Release()

	name, err := getString(att, "FileName")
	if err != nil || name == "" {
		name = "attachment"
	}
	target := filepath.Join(abs, filepath.Base(name))
	if _, err := att.Call("SaveAsFile", target); err != nil {
		return "", hostError(op, "failed to save attachment", err)
	}
	return target, nil
}

func isUnread(item Object) bool {
	unread, err := getBool(item, "UnRead")
	return err == nil && unread
}

// mailMatcher confirms a case-insensitive match on subject, body or sender.
func mailMatcher(query string) func(Object) bool {
	return func(item Object) bool {
		subject, _ := getString(item, "Subject")
		body, _ := getString(item, "Body")
		sender, _ := getString(item, "SenderName")
		return containsFold(query, subject, body, sender)
	}
}
