package outlook

import (
	"context"
	"fmt"
	"strings"
)

// Rules describes the default store's client rules.
func (c *Client) Rules(ctx context.Context) ([]Record, error) {
	const op = "list_outlook_rules"
	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	store, err := s.defaultStore()
	if err != nil {
		return nil, err
	}
	defer store.Release()
	rules, err := callObject(store, "GetRules")
	if err != nil {
		return nil, hostError(op, "failed to read rules", err)
	}
	defer rules.Release()

	out := []Record{}
	err = each(rules, func(rule Object) bool {
		defer rule.Release()
		out = append(out, FormatRule(rule))
		return true
	})
	if err != nil {
		return out, hostError(op, "failed to iterate rules", err)
	}
	return out, nil
}

// FormatRule projects a rule into name, enabled, conditions, actions,
// exceptions and a one-line description. A rule whose conditions or actions
// cannot be read still yields an entry describing the failure.
func FormatRule(rule Object) (rec Record) {
	name, err := getString(rule, "Name")
	if err != nil {
		name = "Unknown"
	}
	enabled, _ := getBool(rule, "Enabled")
	defer func() {
		if r := recover(); r != nil {
			rec = brokenRule(name, enabled, fmt.Errorf("%v", r))
		}
	}()

	conditions, err := describeParts(rule, "Conditions", conditionParts)
	if err != nil {
		return brokenRule(name, enabled, err)
	}
	actions, err := describeParts(rule, "Actions", actionParts)
	if err != nil {
		return brokenRule(name, enabled, err)
	}
	exceptions, err := describeParts(rule, "Exceptions", exceptionParts)
	if err != nil {
		return brokenRule(name, enabled, err)
	}

	var desc []string
	if len(conditions) > 0 {
		desc = append(desc, "When: "+strings.Join(conditions, "; "))
	}
	if len(actions) > 0 {
		desc = append(desc, "Then: "+strings.Join(actions, "; "))
	}
	if len(exceptions) > 0 {
		desc = append(desc, "Except: "+strings.Join(exceptions, "; "))
	}
	return Record{
		"name":        name,
		"enabled":     enabled,
		"description": strings.Join(desc, " | "),
		"conditions":  conditions,
		"actions":     actions,
		"exceptions":  exceptions,
	}
}

func brokenRule(name string, enabled bool, err error) Record {
	return Record{
		"name":        name,
		"enabled":     enabled,
		"description": "Error parsing rule: " + err.Error(),
		"conditions":  []string{},
		"actions":     []string{},
		"exceptions":  []string{},
	}
}

// rulePart renders one enabled sub-object of a rule's Conditions, Actions or
// Exceptions. Parts the host does not expose are skipped.
type rulePart struct {
	prop     string
	describe func(part Object) string
}

func describeParts(rule Object, prop string, parts []rulePart) ([]string, error) {
	group, err := getObject(rule, prop)
	if err != nil {
		return nil, err
	}
	defer group.Release()

	out := []string{}
	for _, p := range parts {
		part, err := getObject(group, p.prop)
		if err != nil {
			continue
		}
		if on, err := getBool(part, "Enabled"); err == nil && on {
			out = append(out, p.describe(part))
		}
		part.Release()
	}
	return out, nil
}

func labelled(label, prop string) func(Object) string {
	return func(part Object) string {
		v, err := part.Get(prop)
		if err != nil {
			return label
		}
		return label + asString(v)
	}
}

func recipientNames(label string) func(Object) string {
	return func(part Object) string {
		recips, err := getObject(part, "Recipients")
		if err != nil {
			return label
		}
		defer recips.Release()
		var names []string
		_ = each(recips, func(r Object) bool {
			defer r.Release()
			if n, err := getString(r, "Name"); err == nil {
				names = append(names, n)
			}
			return true
		})
		return label + strings.Join(names, ", ")
	}
}

func folderTarget(label string) func(Object) string {
	return func(part Object) string {
		folder, err := getObject(part, "Folder")
		if err != nil {
			return label + "(unable to determine)"
		}
		defer folder.Release()
		path, err := getString(folder, "FolderPath")
		if err != nil || path == "" {
			if path, err = getString(folder, "Name"); err != nil {
				return label + "(unable to determine)"
			}
		}
		return label + strings.ReplaceAll(strings.TrimLeft(path, `\`), `\`, "/")
	}
}

func importanceLabel(part Object) string {
	n, err := getInt(part, "Importance")
	if err != nil {
		return "Importance: Unknown"
	}
	switch n {
	case ImportanceLow:
		return "Importance: Low"
	case ImportanceNormal:
		return "Importance: Normal"
	case ImportanceHigh:
		return "Importance: High"
	}
	return "Importance: Unknown"
}

func fixed(s string) func(Object) string {
	return func(Object) string { return s }
}

var conditionParts = []rulePart{
	{"Subject", labelled("Subject contains: ", "Text")},
	{"Body", labelled("Body contains: ", "Text")},
	{"From", recipientNames("From: ")},
	{"SentTo", recipientNames("Sent to: ")},
	{"CC", recipientNames("CC: ")},
	{"Category", labelled("Category: ", "Categories")},
	{"Importance", importanceLabel},
}

var actionParts = []rulePart{
	{"MoveToFolder", folderTarget("Move to folder: ")},
	{"CopyToFolder", folderTarget("Copy to folder: ")},
	{"Delete", fixed("Delete message")},
	{"MarkAsRead", fixed("Mark as read")},
	{"AssignToCategory", labelled("Assign category: ", "Categories")},
	{"Forward", recipientNames("Forward to: ")},
	{"Redirect", recipientNames("Redirect to: ")},
}

var exceptionParts = []rulePart{
	{"Subject", labelled("Except if subject contains: ", "Text")},
	{"From", recipientNames("Except from: ")},
}
