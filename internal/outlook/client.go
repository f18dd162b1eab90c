package outlook

import (
	"context"
	"log/slog"
	"time"
)

// Options configures a Client.
type Options struct {
	// ExcludedStores lists store display names (team or shared mailboxes)
	// that folder lookups and listings skip.
	ExcludedStores []string

	// DefaultDaysBack is the received-date window applied by custom folder
	// searches when the caller does not pass one.
	DefaultDaysBack int

	// AutoReply maps out-of-office settings to store properties.
	AutoReply AutoReplyProperties

	Logger   *slog.Logger
	Observer Observer

	// Now is used for relative date windows. Defaults to time.Now.
	Now func() time.Time
}

// Client runs mailbox operations against Outlook. It is safe for concurrent
// use; every operation opens its own host session.
type Client struct {
	connector Connector
	folders   *FolderCache
	logger    *slog.Logger
	observer  Observer
	now       func() time.Time
	daysBack  int
	autoReply AutoReplyProperties
}

// NewClient creates a Client that reaches Outlook through connector.
func NewClient(connector Connector, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	daysBack := opts.DefaultDaysBack
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}
	autoReply := opts.AutoReply
	if autoReply.Enabled == "" {
		autoReply = DefaultAutoReplyProperties()
	}
	return &Client{
		connector: connector,
		folders:   NewFolderCache(opts.ExcludedStores, logger, observer),
		logger:    logger,
		observer:  observer,
		now:       now,
		daysBack:  daysBack,
		autoReply: autoReply,
	}
}

// Folders returns the client's folder cache.
func (c *Client) Folders() *FolderCache {
	return c.folders
}

// DefaultDaysBack returns the configured custom folder search window.
func (c *Client) DefaultDaysBack() int {
	return c.daysBack
}

// Ping opens and closes a session. It is used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	s, err := c.open(ctx, "ping")
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

// session is the application and MAPI namespace for one operation.
type session struct {
	app Object
	ns  Object
	op  string
}

func (c *Client) open(ctx context.Context, op string) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, connectionError(op, err)
	}
	app, err := c.connector.Connect(ctx)
	if err != nil {
		return nil, connectionError(op, err)
	}
	ns, err := callObject(app, "GetNamespace", "MAPI")
	if err != nil {
		app.Release()
		return nil, connectionError(op, err)
	}
	return &session{app: app, ns: ns, op: op}, nil
}

func (s *session) Close() {
	release(s.ns)
	release(s.app)
}

func (s *session) defaultFolder(id int) (Object, error) {
	f, err := callObject(s.ns, "GetDefaultFolder", id)
	if err != nil {
		return nil, hostError(s.op, "failed to open default folder", err)
	}
	return f, nil
}

// folderItems returns the Items collection of a default folder.
func (s *session) folderItems(id int) (Object, error) {
	folder, err := s.defaultFolder(id)
	if err != nil {
		return nil, err
	}
	defer folder.Release()
	items, err := getObject(folder, "Items")
	if err != nil {
		return nil, hostError(s.op, "failed to read folder items", err)
	}
	return items, nil
}

func (s *session) createItem(kind int) (Object, error) {
	item, err := callObject(s.app, "CreateItem", kind)
	if err != nil {
		return nil, hostError(s.op, "failed to create item", err)
	}
	return item, nil
}

func (s *session) itemByID(id string) (Object, error) {
	item, err := callObject(s.ns, "GetItemFromID", id)
	if err != nil {
		return nil, &Error{Kind: KindNotFound, Op: s.op, Msg: "item " + id + " not found", Err: err}
	}
	return item, nil
}

func (s *session) defaultStore() (Object, error) {
	store, err := getObject(s.ns, "DefaultStore")
	if err != nil {
		return nil, hostError(s.op, "failed to open default store", err)
	}
	return store, nil
}

// sortItems sorts items in place.
func sortItems(op string, items Object, key string, descending bool) error {
	if _, err := items.Call("Sort", key, descending); err != nil {
		return hostError(op, "failed to sort items", err)
	}
	return nil
}

// restrict consumes items and returns the filtered collection.
func restrict(op string, items Object, filter string) (Object, error) {
	defer items.Release()
	narrowed, err := callObject(items, "Restrict", filter)
	if err != nil {
		return nil, hostError(op, "failed to filter items", err)
	}
	return narrowed, nil
}

// collect formats up to limit items from a scan of at most budget items.
// keep, when set, runs against the raw item before formatting. Items that
// cannot be formatted are logged and skipped, so the count always equals
// the number of returned records.
func (c *Client) collect(op, entity string, items Object, limit, budget int, keep func(Object) bool, render func(Object) Record) ([]Record, error) {
	out := make([]Record, 0, limit)
	err := scan(items, budget, func(item Object) bool {
		defer item.Release()
		if keep != nil && !keep(item) {
			return true
		}
		rec := render(item)
		if rec.IsError() {
			c.skip(op, entity, rec)
			return true
		}
		out = append(out, rec)
		return len(out) < limit
	})
	if err != nil {
		return out, hostError(op, "failed to iterate items", err)
	}
	return out, nil
}

func (c *Client) skip(op, entity string, rec Record) {
	c.logger.Warn("skipping unreadable item",
		slog.String("operation", op),
		slog.String("entity", entity),
		slog.String("error", rec.String("error")))
	c.observer.ItemSkipped(entity)
}

func setIfNotEmpty(item Object, prop, value string) error {
	if value == "" {
		return nil
	}
	return item.Set(prop, value)
}
