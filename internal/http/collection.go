package http

import (
	"context"
	"sync"

	"habits/internal/core"
	"habits/internal/store"
)

// Collection is the server's working set of activities. It loads the full
// list from the backing store once, then keeps it current by applying each
// mutation optimistically and reverting when the store call fails. Writes
// are serialized; a single user drives this app, so contention is not a
// concern.
type Collection struct {
	writer  store.ActivityWriter
	lister  store.ActivityLister
	deleter store.ActivityDeleter

	mu     sync.Mutex
	loaded bool
	items  []core.Activity
}

func NewCollection(writer store.ActivityWriter, lister store.ActivityLister, deleter store.ActivityDeleter) *Collection {
	return &Collection{
		writer:  writer,
		lister:  lister,
		deleter: deleter,
	}
}

// Snapshot returns a copy of the working set, loading it from the store on
// first use.
func (c *Collection) Snapshot(ctx context.Context) ([]core.Activity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]core.Activity, len(c.items))
	copy(out, c.items)
	return out, nil
}

// Create persists the activity and appends it to the working set. The store
// assigns the ID; nothing is kept locally when the store rejects the write.
func (c *Collection) Create(ctx context.Context, a core.Activity) (core.Activity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoadedLocked(ctx); err != nil {
		return core.Activity{}, err
	}

	created, err := c.writer.Create(ctx, a)
	if err != nil {
		return core.Activity{}, err
	}
	c.items = append(c.items, created)
	return created, nil
}

// Delete removes the activity optimistically, reverting when the store call
// fails. An ID missing from the working set is still handed to the store so
// its not-found error surfaces to the caller.
func (c *Collection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	idx := -1
	for i, a := range c.items {
		if a.ID == id {
			idx = i
			break
		}
	}

	var backup core.Activity
	if idx >= 0 {
		backup = c.items[idx]
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}

	if err := c.deleter.Delete(ctx, id); err != nil {
		if idx >= 0 {
			// Revert the tentative removal, preserving position.
			c.items = append(c.items[:idx], append([]core.Activity{backup}, c.items[idx:]...)...)
		}
		return err
	}
	return nil
}

// Invalidate drops the working set so the next Snapshot reloads from the store.
func (c *Collection) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.items = nil
}

func (c *Collection) ensureLoadedLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	items, err := c.lister.List(ctx)
	if err != nil {
		return err
	}
	c.items = items
	c.loaded = true
	return nil
}
