package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args wraps the arguments of a tool call. JSON numbers arrive as float64;
// the accessors also accept ints and numeric strings.
type Args map[string]any

// String returns the trimmed string argument, or "" when absent.
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Text returns a free-text argument such as a message body exactly as
// supplied. Whitespace-only input counts as absent.
func (a Args) Text(key string) string {
	v, ok := a[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// StringOr returns the string argument or def when it is empty.
func (a Args) StringOr(key, def string) string {
	if s := a.String(key); s != "" {
		return s
	}
	return def
}

// Int returns the integer argument, or def when absent or not a number.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the boolean argument, or def when absent.
func (a Args) Bool(key string, def bool) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Has reports whether key was supplied.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok && a[key] != nil
}

// Strings returns a list argument. A JSON array and a comma or semicolon
// separated string are both accepted; blank entries are dropped.
func (a Args) Strings(key string) []string {
	var raw []string
	switch v := a[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = v
	case string:
		raw = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
