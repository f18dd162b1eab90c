package outlook

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Object is a late-bound handle on an object exposed by the Outlook
// automation model. Values returned by Get and Call are Go scalars,
// time.Time, nil, or nested Objects.
type Object interface {
	Get(name string, args ...any) (any, error)
	Set(name string, value any) error
	Call(method string, args ...any) (any, error)
	Release()
}

// Connector hands out the Outlook.Application object.
type Connector interface {
	Connect(ctx context.Context) (Object, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Object, error)

// Connect calls f(ctx).
func (f ConnectorFunc) Connect(ctx context.Context) (Object, error) {
	return f(ctx)
}

// TimeLayout is the layout used for every timestamp in formatted records.
const TimeLayout = "2006-01-02 15:04:05"

func release(o Object) {
	if o != nil {
		o.Release()
	}
}

func asObject(v any, what string) (Object, error) {
	obj, ok := v.(Object)
	if !ok || obj == nil {
		return nil, fmt.Errorf("%s: not an object (%T)", what, v)
	}
	return obj, nil
}

func getObject(o Object, name string, args ...any) (Object, error) {
	v, err := o.Get(name, args...)
	if err != nil {
		return nil, err
	}
	return asObject(v, name)
}

func callObject(o Object, method string, args ...any) (Object, error) {
	v, err := o.Call(method, args...)
	if err != nil {
		return nil, err
	}
	return asObject(v, method)
}

func getString(o Object, name string) (string, error) {
	v, err := o.Get(name)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

func getInt(o Object, name string) (int, error) {
	v, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	n, ok := asInt(v)
	if !ok {
		return 0, fmt.Errorf("%s: not a number (%T)", name, v)
	}
	return n, nil
}

func getBool(o Object, name string) (bool, error) {
	v, err := o.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := asBool(v)
	if !ok {
		return false, fmt.Errorf("%s: not a boolean (%T)", name, v)
	}
	return b, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case time.Time:
		return t.Format(TimeLayout)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		return int(math.Round(float64(t))), true
	case float64:
		return int(math.Round(t)), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case nil:
		return false, true
	}
	if n, ok := asInt(v); ok {
		return n != 0, true
	}
	return false, false
}

func asTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// each visits the members of a 1-based automation collection (Stores,
// Folders, Attachments, Recipients, Rules). fn owns the item it receives and
// must release it unless it keeps it. Iteration stops when fn returns false.
func each(coll Object, fn func(item Object) bool) error {
	n, err := getInt(coll, "Count")
	if err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		item, err := callObject(coll, "Item", i)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if !fn(item) {
			return nil
		}
	}
	return nil
}

// scan walks an Items collection with GetFirst/GetNext. It never reads Count,
// which is slow on large folders. At most budget items are visited when
// budget is positive. fn owns each item and stops the walk by returning
// false.
func scan(items Object, budget int, fn func(item Object) bool) error {
	v, err := items.Call("GetFirst")
	if err != nil {
		return err
	}
	for visited := 0; budget <= 0 || visited < budget; visited++ {
		item, ok := v.(Object)
		if !ok || item == nil {
			return nil
		}
		if !fn(item) {
			return nil
		}
		if budget > 0 && visited+1 >= budget {
			return nil
		}
		if v, err = items.Call("GetNext"); err != nil {
			return err
		}
	}
	return nil
}
