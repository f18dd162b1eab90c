package outlook

import (
	"errors"
	"fmt"
)

// Record is a formatted, JSON-ready view of a host item.
type Record map[string]any

// IsError reports whether r is the single-key record produced when an item
// could not be read at all.
func (r Record) IsError() bool {
	_, ok := r["error"]
	return ok && len(r) == 1
}

// String returns the value of key as a string, or "" when absent.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

var errNoItem = errors.New("no item")

// FormatEmail renders a mail item.
func FormatEmail(item Object) Record {
	return format(item, "email", emailFields)
}

// FormatEvent renders an appointment item.
func FormatEvent(item Object) Record {
	return format(item, "appointment", eventFields)
}

// FormatContact renders a contact item.
func FormatContact(item Object) Record {
	return format(item, "contact", contactFields)
}

// format reads every field independently. Only a failure to read the item's
// Class, which every automation item exposes, is treated as fatal.
func format(item Object, entity string, fields []field) (rec Record) {
	if item == nil {
		return errorRecord(entity, errNoItem)
	}
	defer func() {
		if r := recover(); r != nil {
			rec = errorRecord(entity, fmt.Errorf("%v", r))
		}
	}()

	src := newSource(item)
	defer src.close()
	if _, err := src.get("Class"); err != nil {
		return errorRecord(entity, err)
	}

	rec = make(Record, len(fields))
	for _, f := range fields {
		v, err := f.get(src)
		if err != nil {
			v = f.def
		}
		rec[f.key] = v
	}
	return rec
}

func errorRecord(entity string, err error) Record {
	return Record{"error": fmt.Sprintf("Failed to format %s: %v", entity, err)}
}

// formatAttachment renders one member of an item's Attachments collection.
func formatAttachment(att Object, index int) Record {
	src := newSource(att)
	defer src.close()
	rec := Record{"index": index}
	for _, f := range attachmentFields {
		v, err := f.get(src)
		if err != nil {
			v = f.def
		}
		rec[f.key] = v
	}
	return rec
}

var attachmentFields = []field{
	{key: "filename", get: text("FileName"), def: ""},
	{key: "size", get: number("Size"), def: 0},
	{key: "type", get: number("Type"), def: 0},
}
