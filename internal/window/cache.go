// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

// =============================================================================
// COLLABORATORS
// =============================================================================

// Source supplies the message elements currently present, in chronological
// order. The cache trusts this order and never sorts.
type Source[E any] interface {
	Select() []E
}

// Sink applies a visibility decision to a single element.
type Sink[E any] interface {
	SetVisible(e E, visible bool)
}

// IdentityFunc returns a stable identity for an element.
type IdentityFunc[E any] func(E) string

// =============================================================================
// RANGE AND STATS
// =============================================================================

// Range is the inclusive visible index range [Lowest, Highest].
type Range struct {
	Lowest  int
	Highest int
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	return r.Highest - r.Lowest + 1
}

// Contains reports whether i lies inside the range.
func (r Range) Contains(i int) bool {
	return i >= r.Lowest && i <= r.Highest
}

// Stats are the load statistics reported to presentation adapters.
type Stats struct {
	Visible int `json:"visible"`
	Total   int `json:"total"`
}

// Hidden returns the number of cached elements outside the window.
func (s Stats) Hidden() int {
	return s.Total - s.Visible
}

// =============================================================================
// CACHE
// =============================================================================

// Cache tracks every known message element and the visible window over them.
type Cache[E any] struct {
	identity IdentityFunc[E]
	items    []E
	byID     map[string]E

	window Range
	valid  bool
}

// NewCache creates an empty cache that resolves identities with fn.
func NewCache[E any](fn IdentityFunc[E]) *Cache[E] {
	return &Cache[E]{
		identity: fn,
		byID:     make(map[string]E),
	}
}

// Rebuild clears the cache and repopulates it from src in document order.
// A nil source leaves the cache empty.
func (c *Cache[E]) Rebuild(src Source[E]) {
	c.items = c.items[:0]
	clear(c.byID)
	c.valid = false

	if src == nil || c.identity == nil {
		return
	}

	for _, e := range src.Select() {
		id := c.identity(e)
		if id == "" {
			continue
		}
		if _, seen := c.byID[id]; seen {
			continue
		}
		c.byID[id] = e
		c.items = append(c.items, e)
	}
}

// RecomputeWindow resets the window to the keepRecent newest elements.
// The window stays undefined while the cache is empty.
func (c *Cache[E]) RecomputeWindow(keepRecent int) {
	if len(c.items) == 0 {
		c.valid = false
		return
	}
	if keepRecent < 1 {
		keepRecent = 1
	}
	highest := len(c.items) - 1
	c.window = Range{
		Lowest:  max(0, highest-(keepRecent-1)),
		Highest: highest,
	}
	c.valid = true
}

// ExtendBackward lowers the window start by chunk, clamped at zero. It
// reports whether the start actually moved.
func (c *Cache[E]) ExtendBackward(chunk int) bool {
	if !c.valid || chunk < 1 {
		return false
	}
	prev := c.window.Lowest
	c.window.Lowest = max(0, c.window.Lowest-chunk)
	return c.window.Lowest != prev
}

// AppendIfNew appends e unless an element with the same identity is already
// cached. The window is not touched; callers recompute it afterwards.
func (c *Cache[E]) AppendIfNew(e E) bool {
	if c.identity == nil {
		return false
	}
	id := c.identity(e)
	if id == "" {
		return false
	}
	if _, ok := c.byID[id]; ok {
		return false
	}
	c.byID[id] = e
	c.items = append(c.items, e)
	return true
}

// Visible reports whether index i is inside the current window.
func (c *Cache[E]) Visible(i int) bool {
	if !c.valid || i < 0 || i >= len(c.items) {
		return false
	}
	return c.window.Contains(i)
}

// Window returns the current range and whether it is defined.
func (c *Cache[E]) Window() (Range, bool) {
	return c.window, c.valid
}

// Stats returns the visible and total element counts.
func (c *Cache[E]) Stats() Stats {
	s := Stats{Total: len(c.items)}
	if c.valid {
		s.Visible = c.window.Len()
	}
	return s
}

// Len returns the number of cached elements.
func (c *Cache[E]) Len() int {
	return len(c.items)
}

// At returns the element at index i.
func (c *Cache[E]) At(i int) (E, bool) {
	var zero E
	if i < 0 || i >= len(c.items) {
		return zero, false
	}
	return c.items[i], true
}

// Lookup returns the element with the given identity.
func (c *Cache[E]) Lookup(id string) (E, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Elements returns a copy of the ordered sequence.
func (c *Cache[E]) Elements() []E {
	out := make([]E, len(c.items))
	copy(out, c.items)
	return out
}

// Resync pushes the visibility of every cached element to sink.
func (c *Cache[E]) Resync(sink Sink[E]) {
	if sink == nil {
		return
	}
	for i, e := range c.items {
		sink.SetVisible(e, c.Visible(i))
	}
}
