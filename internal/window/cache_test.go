// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type item struct {
	id string
}

type sliceSource []*item

func (s sliceSource) Select() []*item { return s }

type recordingSink struct {
	visible map[string]bool
	calls   int
}

func (r *recordingSink) SetVisible(e *item, visible bool) {
	if r.visible == nil {
		r.visible = make(map[string]bool)
	}
	r.visible[e.id] = visible
	r.calls++
}

func itemID(e *item) string { return e.id }

func makeItems(n int) sliceSource {
	out := make(sliceSource, n)
	for i := range out {
		out[i] = &item{id: fmt.Sprintf("turn-%d", i)}
	}
	return out
}

// =============================================================================
// REBUILD / RECOMPUTE
// =============================================================================

func TestCache_RebuildAndRecompute(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(80))
	c.RecomputeWindow(50)

	r, ok := c.Window()
	require.True(t, ok)
	require.Equal(t, 30, r.Lowest)
	require.Equal(t, 79, r.Highest)
	require.Equal(t, Stats{Visible: 50, Total: 80}, c.Stats())
}

func TestCache_RecomputeVisibleIsMinOfKeepAndTotal(t *testing.T) {
	tests := []struct {
		total int
		keep  int
	}{
		{total: 1, keep: 50},
		{total: 10, keep: 50},
		{total: 50, keep: 50},
		{total: 51, keep: 50},
		{total: 200, keep: 7},
		{total: 3, keep: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d,keep=%d", tt.total, tt.keep), func(t *testing.T) {
			c := NewCache(itemID)
			c.Rebuild(makeItems(tt.total))
			c.RecomputeWindow(tt.keep)

			r, ok := c.Window()
			require.True(t, ok)
			require.Equal(t, tt.total-1, r.Highest)
			require.Equal(t, min(tt.keep, tt.total), c.Stats().Visible)
		})
	}
}

func TestCache_RebuildIsIdempotent(t *testing.T) {
	src := makeItems(12)
	c := NewCache(itemID)

	c.Rebuild(src)
	c.Rebuild(src)

	require.Equal(t, 12, c.Len())
	first, ok := c.At(0)
	require.True(t, ok)
	require.Equal(t, "turn-0", first.id)
}

func TestCache_RebuildSkipsRepeatedIdentities(t *testing.T) {
	a := &item{id: "a"}
	src := sliceSource{a, &item{id: "b"}, a, &item{id: "a"}}

	c := NewCache(itemID)
	c.Rebuild(src)

	require.Equal(t, 2, c.Len())
}

func TestCache_EmptyContainer(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(sliceSource{})
	c.RecomputeWindow(50)

	_, ok := c.Window()
	require.False(t, ok)
	require.Equal(t, Stats{}, c.Stats())
	for i := -1; i < 5; i++ {
		require.False(t, c.Visible(i))
	}
	require.False(t, c.ExtendBackward(20))
}

func TestCache_NilSourceDegradesToEmpty(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(5))
	c.Rebuild(nil)

	require.Equal(t, 0, c.Len())
	require.Equal(t, Stats{}, c.Stats())
}

func TestCache_NilIdentityNeverAppends(t *testing.T) {
	c := NewCache[*item](nil)
	c.Rebuild(makeItems(3))

	require.Equal(t, 0, c.Len())
	require.False(t, c.AppendIfNew(&item{id: "x"}))
}

// =============================================================================
// EXTEND BACKWARD
// =============================================================================

func TestCache_ExtendBackward(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(80))
	c.RecomputeWindow(50)

	require.True(t, c.ExtendBackward(20))
	r, _ := c.Window()
	require.Equal(t, 10, r.Lowest)

	require.True(t, c.ExtendBackward(20))
	r, _ = c.Window()
	require.Equal(t, 0, r.Lowest)

	require.False(t, c.ExtendBackward(20))
	r, _ = c.Window()
	require.Equal(t, 0, r.Lowest)
	require.Equal(t, 79, r.Highest)
}

func TestCache_ExtendBackwardIdempotentAtBoundary(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(10))
	c.RecomputeWindow(50)

	before, _ := c.Window()
	for i := 0; i < 5; i++ {
		require.False(t, c.ExtendBackward(3))
	}
	after, _ := c.Window()
	require.Equal(t, before, after)
}

func TestCache_RebuildResetsExtendedWindow(t *testing.T) {
	src := makeItems(80)
	c := NewCache(itemID)
	c.Rebuild(src)
	c.RecomputeWindow(50)
	c.ExtendBackward(20)

	c.Rebuild(src)
	c.RecomputeWindow(50)

	r, _ := c.Window()
	require.Equal(t, 30, r.Lowest)
}

// =============================================================================
// APPEND
// =============================================================================

func TestCache_AppendIfNewCountsDistinctIdentities(t *testing.T) {
	feeds := []string{"a", "b", "a", "c", "c", "c", "d", "b"}

	c := NewCache(itemID)
	for _, id := range feeds {
		c.AppendIfNew(&item{id: id})
	}

	require.Equal(t, 4, c.Len())
}

func TestCache_AppendDoesNotMoveWindow(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(5))
	c.RecomputeWindow(3)
	before, _ := c.Window()

	require.True(t, c.AppendIfNew(&item{id: "new"}))
	after, _ := c.Window()
	require.Equal(t, before, after)
	require.False(t, c.Visible(5))

	c.RecomputeWindow(3)
	require.True(t, c.Visible(5))
}

func TestCache_AppendDuplicateOfScannedElement(t *testing.T) {
	src := makeItems(3)
	c := NewCache(itemID)
	c.Rebuild(src)

	require.False(t, c.AppendIfNew(src[1]))
	require.False(t, c.AppendIfNew(&item{id: "turn-2"}))
	require.Equal(t, 3, c.Len())

	got, ok := c.Lookup("turn-1")
	require.True(t, ok)
	require.Same(t, src[1], got)
}

// =============================================================================
// VISIBILITY
// =============================================================================

func TestCache_VisibilityIsContiguousTail(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(37))
	c.RecomputeWindow(9)
	c.ExtendBackward(4)

	r, ok := c.Window()
	require.True(t, ok)

	count := 0
	for i := 0; i < c.Len(); i++ {
		if c.Visible(i) {
			count++
			require.GreaterOrEqual(t, i, r.Lowest)
		}
	}
	require.Equal(t, r.Len(), count)
	require.True(t, c.Visible(r.Highest))
	require.False(t, c.Visible(c.Len()))
}

func TestCache_Resync(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(6))
	c.RecomputeWindow(2)

	sink := &recordingSink{}
	c.Resync(sink)

	require.Equal(t, 6, sink.calls)
	require.False(t, sink.visible["turn-3"])
	require.True(t, sink.visible["turn-4"])
	require.True(t, sink.visible["turn-5"])

	c.Resync(nil)
}

func TestCache_ElementsReturnsCopy(t *testing.T) {
	c := NewCache(itemID)
	c.Rebuild(makeItems(2))

	els := c.Elements()
	els[0] = &item{id: "mutated"}

	first, _ := c.At(0)
	require.Equal(t, "turn-0", first.id)

	_, ok := c.At(2)
	require.False(t, ok)
}
