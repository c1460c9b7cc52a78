package selections

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotAvailable is returned by lookups before the table has loaded,
	// or after the load failed.
	ErrNotAvailable = errors.New("selections not available")

	// ErrUnknownList is returned for a list the loaded table does not have.
	ErrUnknownList = errors.New("unknown selection list")
)

// Source produces the table. It is invoked at most once per Cache.
type Source func(ctx context.Context) (*Table, error)

// FileSource reads the table from a file.
func FileSource(path string) Source {
	return func(context.Context) (*Table, error) {
		return ParseFile(path)
	}
}

// StaticSource serves an already parsed table.
func StaticSource(t *Table) Source {
	return func(context.Context) (*Table, error) {
		return t, nil
	}
}

// Cache holds the table once loaded. Loading is single-shot; lookups never
// block.
type Cache struct {
	once sync.Once
	done chan struct{}

	mu        sync.RWMutex
	table     *Table
	err       error
	loaded    bool
	callbacks []func(error)
}

// NewCache returns an empty, unloaded cache.
func NewCache() *Cache {
	return &Cache{done: make(chan struct{})}
}

// Load runs src if no load has started yet and waits for the outcome.
// Later calls return the outcome of the first load.
func (c *Cache) Load(ctx context.Context, src Source) error {
	c.start(ctx, src, false)
	return c.Wait(ctx)
}

// LoadAsync starts loading in the background if no load has started yet.
func (c *Cache) LoadAsync(ctx context.Context, src Source) {
	c.start(ctx, src, true)
}

func (c *Cache) start(ctx context.Context, src Source, async bool) {
	c.once.Do(func() {
		run := func() {
			t, err := src(ctx)
			if err == nil && t == nil {
				err = errors.New("selections source returned no table")
			}
			c.finish(t, err)
		}
		if async {
			go run()
			return
		}
		run()
	})
}

func (c *Cache) finish(t *Table, err error) {
	c.mu.Lock()
	if err == nil {
		c.table = t
	}
	c.err = err
	c.loaded = true
	callbacks := c.callbacks
	c.callbacks = nil
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(err)
	}
	close(c.done)
}

// Lookup returns the values of a list.
func (c *Cache) Lookup(list string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil {
		return nil, ErrNotAvailable
	}
	vals, ok := c.table.Values(list)
	if !ok {
		return nil, ErrUnknownList
	}
	return vals, nil
}

// Loaded reports whether a load has completed, successfully or not.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// OnLoaded registers fn to run once the load completes, with the load
// error. If the load already completed fn runs immediately.
func (c *Cache) OnLoaded(fn func(error)) {
	c.mu.Lock()
	if !c.loaded {
		c.callbacks = append(c.callbacks, fn)
		c.mu.Unlock()
		return
	}
	err := c.err
	c.mu.Unlock()
	fn(err)
}

// Wait blocks until the load completes or ctx is done.
func (c *Cache) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
