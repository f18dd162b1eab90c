package outlook

import (
	"context"
	"strings"
)

// Contacts lists contacts sorted by full name. With name set only contacts
// whose full name contains it are returned, scanning up to three times the
// limit.
func (c *Client) Contacts(ctx context.Context, limit int, name string) ([]Record, error) {
	const op = "get_contacts"
	limit = clampLimit(limit, DefaultContactLimit, MaxContactLimit)

	s, items, err := c.contactItems(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	defer items.Release()

	budget := limit
	var keep func(Object) bool
	if name = strings.TrimSpace(name); name != "" {
		budget = limit * contactScanFactor
		keep = func(item Object) bool {
			full, _ := getString(item, "FullName")
			return containsFold(name, full)
		}
	}
	return c.collect(op, "contact", items, limit, budget, keep, FormatContact)
}

// SearchContacts finds contacts whose full name, primary email or company
// contains query.
func (c *Client) SearchContacts(ctx context.Context, query string, limit int) ([]Record, error) {
	const op = "search_contacts"
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationf(op, "query is required")
	}
	limit = clampLimit(limit, MaxContactLimit, MaxContactLimit)

	s, items, err := c.contactItems(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	defer items.Release()

	match := func(item Object) bool {
		full, _ := getString(item, "FullName")
		email, _ := getString(item, "Email1Address")
		company, _ := getString(item, "CompanyName")
		return containsFold(query, full, email, company)
	}
	return c.collect(op, "contact", items, limit, 0, match, FormatContact)
}

func (c *Client) contactItems(ctx context.Context, op string) (*session, Object, error) {
	s, err := c.open(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.folderItems(FolderContacts)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	if err := sortItems(op, items, "[FullName]", false); err != nil {
		items.Release()
		s.Close()
		return nil, nil, err
	}
	return s, items, nil
}

// NewContact describes a contact to create.
type NewContact struct {
	FullName      string
	Email         string
	Company       string
	JobTitle      string
	BusinessPhone string
	MobilePhone   string
	HomePhone     string
}

// CreateContact saves a new contact and returns its entry ID.
func (c *Client) CreateContact(ctx context.Context, nc NewContact) (string, error) {
	const op = "create_contact"
	if strings.TrimSpace(nc.FullName) == "" {
		return "", validationf(op, "full_name is required")
	}
	if strings.TrimSpace(nc.Email) == "" {
		return "", validationf(op, "email is required")
	}

	s, err := c.open(ctx, op)
	if err != nil {
		return "", err
	}
	defer s.Close()

	item, err := s.createItem(ItemContact)
	if err != nil {
		return "", err
	}
	defer item.Release()

	props := []struct{ prop, value string }{
		{"FullName", nc.FullName},
		{"Email1Address", nc.Email},
		{"CompanyName", nc.Company},
		{"JobTitle", nc.JobTitle},
		{"BusinessTelephoneNumber", nc.BusinessPhone},
		{"MobileTelephoneNumber", nc.MobilePhone},
		{"HomeTelephoneNumber", nc.HomePhone},
	}
	for _, p := range props {
		if err := setIfNotEmpty(item, p.prop, p.value); err != nil {
			return "", hostError(op, "failed to set "+p.prop, err)
		}
	}
	if _, err := item.Call("Save"); err != nil {
		return "", hostError(op, "failed to save contact", err)
	}
	id, _ := getString(item, "EntryID")
	return id, nil
}
