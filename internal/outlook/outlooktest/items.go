package outlooktest

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teemow/outlook-mcp/internal/outlook"
)

// ItemsLog records what was done to an Items collection and every
// collection restricted from it.
type ItemsLog struct {
	mu                 sync.Mutex
	sorts              []string
	filters            []string
	visited            int
	includeRecurrences bool
}

// Sorts returns the sort keys applied, in order.
func (l *ItemsLog) Sorts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.sorts...)
}

// Filters returns the Restrict filters applied, in order.
func (l *ItemsLog) Filters() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.filters...)
}

// Visited returns how many items GetFirst/GetNext handed out.
func (l *ItemsLog) Visited() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visited
}

// IncludeRecurrences reports whether recurrence expansion was switched on.
func (l *ItemsLog) IncludeRecurrences() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.includeRecurrences
}

// Items is a fake Items collection supporting Sort, Restrict, GetFirst,
// GetNext, Count and Item.
type Items struct {
	*Object

	// Match decides which members survive Restrict. Nil keeps every member.
	Match func(filter string, item outlook.Object) bool

	Log *ItemsLog

	mu      sync.Mutex
	members []outlook.Object
	pos     int
}

// NewItems returns a collection holding members in order.
func NewItems(members ...outlook.Object) *Items {
	return newItems(&ItemsLog{}, nil, members)
}

func newItems(log *ItemsLog, match func(string, outlook.Object) bool, members []outlook.Object) *Items {
	it := &Items{
		Object:  New("items", nil),
		Match:   match,
		Log:     log,
		members: members,
	}
	it.Getters["Count"] = func(...any) (any, error) {
		it.mu.Lock()
		defer it.mu.Unlock()
		return len(it.members), nil
	}
	it.On("Item", func(args ...any) (any, error) {
		it.mu.Lock()
		defer it.mu.Unlock()
		i, _ := args[0].(int)
		if i < 1 || i > len(it.members) {
			return nil, fmt.Errorf("items: index %v out of range", args[0])
		}
		return it.members[i-1], nil
	})
	it.On("Sort", func(args ...any) (any, error) {
		key, _ := args[0].(string)
		desc := false
		if len(args) > 1 {
			desc, _ = args[1].(bool)
		}
		it.sortBy(key, desc)
		return nil, nil
	})
	it.On("Restrict", func(args ...any) (any, error) {
		filter, _ := args[0].(string)
		log.mu.Lock()
		log.filters = append(log.filters, filter)
		log.mu.Unlock()

		it.mu.Lock()
		defer it.mu.Unlock()
		var kept []outlook.Object
		for _, m := range it.members {
			if it.Match == nil || it.Match(filter, m) {
				kept = append(kept, m)
			}
		}
		return newItems(log, it.Match, kept), nil
	})
	it.On("GetFirst", func(...any) (any, error) {
		it.mu.Lock()
		it.pos = 0
		it.mu.Unlock()
		return it.next(), nil
	})
	it.On("GetNext", func(...any) (any, error) {
		return it.next(), nil
	})
	return it
}

// Set intercepts IncludeRecurrences.
func (it *Items) Set(name string, value any) error {
	if name == "IncludeRecurrences" {
		b, _ := value.(bool)
		it.Log.mu.Lock()
		it.Log.includeRecurrences = b
		it.Log.mu.Unlock()
	}
	return it.Object.Set(name, value)
}

func (it *Items) next() any {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.pos >= len(it.members) {
		return nil
	}
	m := it.members[it.pos]
	it.pos++
	it.Log.mu.Lock()
	it.Log.visited++
	it.Log.mu.Unlock()
	return m
}

func (it *Items) sortBy(key string, desc bool) {
	it.Log.mu.Lock()
	it.Log.sorts = append(it.Log.sorts, key)
	it.Log.mu.Unlock()

	prop := strings.Trim(key, "[]")
	it.mu.Lock()
	defer it.mu.Unlock()
	sort.SliceStable(it.members, func(i, j int) bool {
		a, _ := it.members[i].Get(prop)
		b, _ := it.members[j].Get(prop)
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func less(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Before(y)
	case string:
		y, ok := b.(string)
		return ok && x < y
	case int:
		y, ok := b.(int)
		return ok && x < y
	}
	return false
}
