package outlook

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Folder cache lookup outcomes reported to an Observer.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
)

// FolderCache maps custom folder paths to resolved folder objects.
//
// Entries are validated on every hit by reading the folder's Name; a dead
// entry is evicted and the path resolved again, so Resolve never hands out
// a stale reference. Concurrent lookups of the same uncached path share a
// single store walk.
type FolderCache struct {
	mu      sync.Mutex
	entries map[string]Object
	group   singleflight.Group

	excluded map[string]bool
	logger   *slog.Logger
	observer Observer
}

// NewFolderCache creates an empty cache that never descends into the named
// stores.
func NewFolderCache(excludedStores []string, logger *slog.Logger, observer Observer) *FolderCache {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	excluded := make(map[string]bool, len(excludedStores))
	for _, s := range excludedStores {
		excluded[s] = true
	}
	return &FolderCache{
		entries:  make(map[string]Object),
		excluded: excluded,
		logger:   logger,
		observer: observer,
	}
}

// Excluded reports whether store is skipped by lookups and listings.
func (c *FolderCache) Excluded(store string) bool {
	return c.excluded[store]
}

// Len returns the number of cached paths.
func (c *FolderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate drops every entry and returns how many were evicted. Call it
// when Outlook is restarted or the folder tree changes.
func (c *FolderCache) Invalidate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	for path, obj := range c.entries {
		release(obj)
		delete(c.entries, path)
	}
	return n
}

// Resolve returns the folder at path ("Inbox/Projects/2024"), or nil when
// no eligible store contains it. With useCache false the cached entry is
// dropped and the stores are walked again. The returned folder belongs to
// the cache and must not be released by the caller.
func (c *FolderCache) Resolve(ns Object, path string, useCache bool) (Object, error) {
	if useCache {
		if obj := c.lookup(path); obj != nil {
			return obj, nil
		}
	} else {
		c.forget(path)
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		obj, err := c.walk(ns, path)
		if err != nil || obj == nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[path] = obj
		c.mu.Unlock()
		return obj, nil
	})
	if err != nil || v == nil {
		return nil, err
	}
	return v.(Object), nil
}

func (c *FolderCache) forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if obj, ok := c.entries[path]; ok {
		delete(c.entries, path)
		release(obj)
	}
}

func (c *FolderCache) lookup(path string) Object {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, ok := c.entries[path]
	if !ok {
		c.observer.FolderCacheLookup(CacheMiss)
		return nil
	}
	if _, err := obj.Get("Name"); err != nil {
		c.logger.Debug("evicting stale folder cache entry", slog.String("folder", path), slog.String("error", err.Error()))
		delete(c.entries, path)
		release(obj)
		c.observer.FolderCacheLookup(CacheStale)
		return nil
	}
	c.observer.FolderCacheLookup(CacheHit)
	return obj
}

// ListFolders returns every folder below the roots of the non-excluded
// stores. Counts are slow on large mailboxes and only read on request.
func (c *Client) ListFolders(ctx context.Context, includeCounts bool) ([]Record, error) {
	const op = "list_outlook_folders"
	s, err := c.open(ctx, op)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	folders, err := c.folders.listFolders(s.ns, includeCounts)
	if err != nil {
		return nil, hostError(op, "failed to enumerate stores", err)
	}
	return folders, nil
}

// ClearFolderCache drops every cached folder lookup.
func (c *Client) ClearFolderCache() int {
	return c.folders.Invalidate()
}

// walk tries every non-excluded store in order. A store is abandoned at the
// first path segment with no exactly matching child.
func (c *FolderCache) walk(ns Object, path string) (Object, error) {
	parts := strings.Split(path, "/")
	stores, err := getObject(ns, "Stores")
	if err != nil {
		return nil, err
	}
	defer stores.Release()

	var found Object
	err = each(stores, func(store Object) bool {
		defer store.Release()
		name, _ := getString(store, "DisplayName")
		if c.excluded[name] {
			c.logger.Debug("skipping excluded store", slog.String("store", name))
			return true
		}
		root, err := callObject(store, "GetRootFolder")
		if err != nil {
			c.logger.Debug("cannot open store root", slog.String("store", name), slog.String("error", err.Error()))
			return true
		}
		found = descend(root, parts)
		return found == nil
	})
	return found, err
}

// descend consumes root and returns the folder at parts below it, or nil.
func descend(root Object, parts []string) Object {
	cur := root
	for _, part := range parts {
		next := childFolder(cur, part)
		cur.Release()
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

func childFolder(folder Object, name string) Object {
	children, err := getObject(folder, "Folders")
	if err != nil {
		return nil
	}
	defer children.Release()

	var match Object
	_ = each(children, func(child Object) bool {
		if n, err := getString(child, "Name"); err == nil && n == name {
			match = child
			return false
		}
		child.Release()
		return true
	})
	return match
}

// listFolders walks every non-excluded store and records each folder below
// the store root. Paths are relative to the root so they can be passed back
// to Resolve.
func (c *FolderCache) listFolders(ns Object, includeCounts bool) ([]Record, error) {
	stores, err := getObject(ns, "Stores")
	if err != nil {
		return nil, err
	}
	defer stores.Release()

	folders := []Record{}
	err = each(stores, func(store Object) bool {
		defer store.Release()
		name, _ := getString(store, "DisplayName")
		if c.excluded[name] {
			return true
		}
		root, err := callObject(store, "GetRootFolder")
		if err != nil {
			c.logger.Debug("cannot open store root", slog.String("store", name), slog.String("error", err.Error()))
			return true
		}
		defer root.Release()
		folders = c.appendChildren(folders, root, name, "", includeCounts)
		return true
	})
	return folders, err
}

func (c *FolderCache) appendChildren(out []Record, folder Object, store, parent string, includeCounts bool) []Record {
	children, err := getObject(folder, "Folders")
	if err != nil {
		c.logger.Debug("cannot list subfolders", slog.String("folder", parent), slog.String("error", err.Error()))
		return out
	}
	defer children.Release()

	_ = each(children, func(child Object) bool {
		defer child.Release()
		name, err := getString(child, "Name")
		if err != nil {
			return true
		}
		path := name
		if parent != "" {
			path = parent + "/" + name
		}
		rec := Record{"name": name, "path": path, "store": store}
		if includeCounts {
			rec["item_count"], rec["unread_count"] = folderCounts(child)
		}
		out = append(out, rec)
		out = c.appendChildren(out, child, store, path, includeCounts)
		return true
	})
	return out
}

// folderCounts returns -1 for both counts when either cannot be read.
func folderCounts(folder Object) (int, int) {
	items, err := getObject(folder, "Items")
	if err != nil {
		return -1, -1
	}
	defer items.Release()
	total, err := getInt(items, "Count")
	if err != nil {
		return -1, -1
	}
	unread, err := getInt(folder, "UnReadItemCount")
	if err != nil {
		return -1, -1
	}
	return total, unread
}

// Observer receives domain events worth counting.
type Observer interface {
	FolderCacheLookup(result string)
	ItemSkipped(entity string)
}

type nopObserver struct{}

func (nopObserver) FolderCacheLookup(string) {}
func (nopObserver) ItemSkipped(string)       {}
