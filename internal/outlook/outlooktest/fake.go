// Package outlooktest provides an in-memory stand-in for the Outlook
// automation model so the outlook package and the tool handlers can be
// tested without Windows or Outlook.
package outlooktest

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/outlook-mcp/internal/outlook"
)

// Item classes (OlObjectClass) reported by fake items.
const (
	ClassAppointment = 26
	ClassContact     = 40
	ClassMail        = 43
	ClassMeeting     = 53
)

// Assignment records a property write.
type Assignment struct {
	Prop  string
	Value any
}

// Invocation records a method call.
type Invocation struct {
	Method string
	Args   []any
}

// Object is a scriptable fake automation object. Reads come from Getters,
// then Props; Errs forces a read to fail. Methods are looked up in Methods.
// Every write and call is recorded.
type Object struct {
	mu sync.Mutex

	Label   string
	Props   map[string]any
	Getters map[string]func(args ...any) (any, error)
	Errs    map[string]error
	SetErrs map[string]error
	Methods map[string]func(args ...any) (any, error)

	sets     []Assignment
	calls    []Invocation
	released int
}

// New returns an Object with the given properties.
func New(label string, props map[string]any) *Object {
	if props == nil {
		props = map[string]any{}
	}
	return &Object{
		Label:   label,
		Props:   props,
		Getters: map[string]func(args ...any) (any, error){},
		Errs:    map[string]error{},
		SetErrs: map[string]error{},
		Methods: map[string]func(args ...any) (any, error){},
	}
}

// On registers a method implementation and returns o.
func (o *Object) On(method string, fn func(args ...any) (any, error)) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Methods[method] = fn
	return o
}

// Fail makes reads of prop return err and returns o.
func (o *Object) Fail(prop string, err error) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Errs[prop] = err
	return o
}

func (o *Object) Get(name string, args ...any) (any, error) {
	o.mu.Lock()
	err, failed := o.Errs[name]
	getter := o.Getters[name]
	v, ok := o.Props[name]
	o.mu.Unlock()

	if failed {
		return nil, err
	}
	if getter != nil {
		return getter(args...)
	}
	if !ok {
		return nil, fmt.Errorf("%s: unknown property %s", o.Label, name)
	}
	return v, nil
}

func (o *Object) Set(name string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err, ok := o.SetErrs[name]; ok {
		return err
	}
	o.sets = append(o.sets, Assignment{Prop: name, Value: value})
	o.Props[name] = value
	return nil
}

func (o *Object) Call(method string, args ...any) (any, error) {
	o.mu.Lock()
	o.calls = append(o.calls, Invocation{Method: method, Args: args})
	fn := o.Methods[method]
	o.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("%s: unknown method %s", o.Label, method)
	}
	return fn(args...)
}

func (o *Object) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.released++
}

// Sets returns the recorded property writes in order.
func (o *Object) Sets() []Assignment {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Assignment(nil), o.sets...)
}

// Calls returns the recorded method calls in order.
func (o *Object) Calls() []Invocation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Invocation(nil), o.calls...)
}

// Called reports how many times method was invoked.
func (o *Object) Called(method string) int {
	n := 0
	for _, c := range o.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// WasSet reports whether prop was written.
func (o *Object) WasSet(prop string) bool {
	for _, s := range o.Sets() {
		if s.Prop == prop {
			return true
		}
	}
	return false
}

// Released reports how many times Release was called.
func (o *Object) Released() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.released
}

// Collection returns a 1-based collection exposing Count and Item.
func Collection(label string, members ...outlook.Object) *Object {
	c := New(label, map[string]any{"Count": len(members)})
	c.On("Item", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: Item needs an index", label)
		}
		i, ok := args[0].(int)
		if !ok || i < 1 || i > len(members) {
			return nil, fmt.Errorf("%s: index %v out of range", label, args[0])
		}
		return members[i-1], nil
	})
	return c
}

// Mail returns a mail item with the given properties and attachments.
func Mail(props map[string]any, attachments ...outlook.Object) *Object {
	return item("mail", ClassMail, props, attachments)
}

// Appointment returns an appointment item.
func Appointment(props map[string]any) *Object {
	return item("appointment", ClassAppointment, props, nil)
}

// Contact returns a contact item.
func Contact(props map[string]any) *Object {
	return item("contact", ClassContact, props, nil)
}

// Attachment returns an attachment with a file name and size.
func Attachment(name string, size int) *Object {
	a := New("attachment "+name, map[string]any{"FileName": name, "Size": size, "Type": 1})
	a.On("SaveAsFile", func(args ...any) (any, error) { return nil, nil })
	return a
}

func item(label string, class int, props map[string]any, attachments []outlook.Object) *Object {
	o := New(label, map[string]any{"Class": class})
	for k, v := range props {
		o.Props[k] = v
	}
	if _, ok := o.Props["Attachments"]; !ok {
		o.Props["Attachments"] = Collection(label+" attachments", attachments...)
	}
	return o
}

// Folder returns a folder with the given children and an empty Items
// collection.
func Folder(name string, children ...*Object) *Object {
	members := make([]outlook.Object, len(children))
	for i, c := range children {
		members[i] = c
	}
	return New("folder "+name, map[string]any{
		"Name":            name,
		"Folders":         Collection(name+" folders", members...),
		"Items":           NewItems(),
		"UnReadItemCount": 0,
	})
}

// Store returns a store whose root folder is root.
func Store(displayName string, root *Object) *Object {
	s := New("store "+displayName, map[string]any{"DisplayName": displayName})
	s.On("GetRootFolder", func(...any) (any, error) { return root, nil })
	return s
}

// Outlook is a fake Outlook.Application with its MAPI namespace.
type Outlook struct {
	mu sync.Mutex

	App       *Object
	Namespace *Object

	defaults map[int]*Object
	byID     map[string]outlook.Object
	stores   []outlook.Object
	created  []*Object
	connects int

	// ConnectErr makes Connect fail.
	ConnectErr error
}

// NewOutlook returns an application with an empty namespace.
func NewOutlook() *Outlook {
	o := &Outlook{
		defaults: map[int]*Object{},
		byID:     map[string]outlook.Object{},
	}
	o.Namespace = New("namespace", nil)
	o.Namespace.Getters["Stores"] = func(...any) (any, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		return Collection("stores", o.stores...), nil
	}
	o.Namespace.On("GetDefaultFolder", func(args ...any) (any, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		id, _ := args[0].(int)
		f, ok := o.defaults[id]
		if !ok {
			return nil, fmt.Errorf("no default folder %d", id)
		}
		return f, nil
	})
	o.Namespace.On("GetItemFromID", func(args ...any) (any, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		id, _ := args[0].(string)
		it, ok := o.byID[id]
		if !ok {
			return nil, fmt.Errorf("could not open item %s", id)
		}
		return it, nil
	})

	o.App = New("application", nil)
	o.App.On("GetNamespace", func(...any) (any, error) { return o.Namespace, nil })
	o.App.On("CreateItem", func(args ...any) (any, error) {
		kind, _ := args[0].(int)
		return o.newItem(kind), nil
	})
	return o
}

func (o *Outlook) newItem(kind int) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	class := map[int]int{outlook.ItemMail: ClassMail, outlook.ItemAppointment: ClassAppointment, outlook.ItemContact: ClassContact}[kind]
	it := item(fmt.Sprintf("created %d", len(o.created)+1), class, nil, nil)
	id := fmt.Sprintf("NEW-%d", len(o.created)+1)

	var attached []string
	atts := New("created attachments", map[string]any{"Count": 0})
	atts.On("Add", func(args ...any) (any, error) {
		p, _ := args[0].(string)
		attached = append(attached, p)
		atts.Props["Count"] = len(attached)
		return Attachment(p, 0), nil
	})
	it.Props["Attachments"] = atts
	it.On("Save", func(...any) (any, error) {
		it.Props["EntryID"] = id
		return nil, nil
	})
	it.On("Send", func(...any) (any, error) { return nil, nil })

	o.created = append(o.created, it)
	return it
}

// Connector returns a connector that hands out App.
func (o *Outlook) Connector() outlook.Connector {
	return outlook.ConnectorFunc(func(context.Context) (outlook.Object, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.connects++
		if o.ConnectErr != nil {
			return nil, o.ConnectErr
		}
		return o.App, nil
	})
}

// Connects reports how many sessions were opened.
func (o *Outlook) Connects() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.connects
}

// SetDefaultFolder registers the folder returned for a default folder id.
func (o *Outlook) SetDefaultFolder(id int, folder *Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.defaults[id] = folder
}

// SetDefaultItems registers a default folder holding items.
func (o *Outlook) SetDefaultItems(id int, items *Items) *Object {
	f := New(fmt.Sprintf("default folder %d", id), map[string]any{"Items": items})
	o.SetDefaultFolder(id, f)
	return f
}

// AddStore appends a store to the namespace.
func (o *Outlook) AddStore(store *Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stores = append(o.stores, store)
}

// AddItem makes item reachable through GetItemFromID.
func (o *Outlook) AddItem(id string, it outlook.Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byID[id] = it
}

// SetDefaultStore sets the namespace's DefaultStore.
func (o *Outlook) SetDefaultStore(store *Object) {
	o.Namespace.Props["DefaultStore"] = store
}

// Created returns the items made through CreateItem.
func (o *Outlook) Created() []*Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Object(nil), o.created...)
}
