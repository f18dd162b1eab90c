package instrumentation

import (
	"sort"
	"strings"
)

// Cardinality management helpers for logs and metrics.
// These functions reduce high-cardinality values such as recipient
// addresses to something safe to aggregate.

// ExtractRecipientDomains reduces a recipient list to its sorted, distinct,
// lowercased domains joined by commas.
//
// Example:
//
//	ExtractRecipientDomains("a@x.com; B@Y.com, c@x.com")  // "x.com,y.com"
//	ExtractRecipientDomains("invalid")                    // "unknown"
//	ExtractRecipientDomains("")                           // ""
func ExtractRecipientDomains(list string) string {
	fields := strings.FieldsFunc(list, func(r rune) bool { return r == ';' || r == ',' })

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		seen[extractDomain(f)] = struct{}{}
	}
	if len(seen) == 0 {
		return ""
	}
	domains := make([]string, 0, len(seen))
	for d := range seen {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return strings.Join(domains, ",")
}

func extractDomain(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	// Display-name form: "Jane Doe <jane@example.com>"
	if i := strings.LastIndexByte(address, '<'); i >= 0 {
		address = strings.TrimSuffix(address[i+1:], ">")
	}
	parts := strings.Split(address, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "unknown"
}

// Common operation types for Outlook metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList    = "list"
	OperationGet     = "get"
	OperationCreate  = "create"
	OperationUpdate  = "update"
	OperationSend    = "send"
	OperationSearch  = "search"
	OperationRespond = "respond"
	OperationSave    = "save"
)
