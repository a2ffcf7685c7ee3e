// Package resource holds the cached state shared by the resource stores.
//
// Every load takes a generation number when it starts; only the most recently
// started load may write its result, so overlapping loads cannot leave an
// older response on top of a newer one.
package resource

import "sync"

// State is a copy of a collection's state.
type State[T any] struct {
	Items   []T
	Loading bool
	Err     string
}

// Collection caches one remote collection.
type Collection[T any] struct {
	mu      sync.RWMutex
	items   []T
	loading bool
	err     string
	gen     uint64
}

// Begin marks a load in flight and returns its generation.
func (c *Collection[T]) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loading = true
	c.err = ""
	return c.gen
}

// Finish stores the outcome of load gen. A non-empty errMsg empties the
// collection. It reports false when a newer load has started since.
func (c *Collection[T]) Finish(gen uint64, items []T, errMsg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.loading = false
	if errMsg != "" {
		c.items = nil
		c.err = errMsg
		return true
	}
	c.items = items
	c.err = ""
	return true
}

// Snapshot returns a copy of the current state.
func (c *Collection[T]) Snapshot() State[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{Items: items, Loading: c.loading, Err: c.err}
}

// Items returns a copy of the cached items.
func (c *Collection[T]) Items() []T {
	return c.Snapshot().Items
}

// Find returns the first cached item matching fn.
func (c *Collection[T]) Find(fn func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if fn(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Item is a copy of a single-item fetch's state.
type Item[T any] struct {
	Value   *T
	Loading bool
	Err     string
}

// Current caches one item fetched on its own, e.g. by slug, with loading and
// error state separate from the collection.
type Current[T any] struct {
	mu      sync.RWMutex
	value   *T
	loading bool
	err     string
	gen     uint64
}

// Begin clears the previous item and marks a fetch in flight.
func (c *Current[T]) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.value = nil
	c.err = ""
	c.loading = true
	return c.gen
}

// Finish stores the outcome of fetch gen.
func (c *Current[T]) Finish(gen uint64, value *T, errMsg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.loading = false
	c.value = value
	c.err = errMsg
	return true
}

// Snapshot returns a copy of the current state.
func (c *Current[T]) Snapshot() Item[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var v *T
	if c.value != nil {
		cp := *c.value
		v = &cp
	}
	return Item[T]{Value: v, Loading: c.loading, Err: c.err}
}
