// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/longchat/internal/window"
)

// document plays the host: it owns the nodes, and the cache only references them.
type document struct {
	nodes []*node
}

func (d *document) Select() []*node {
	var out []*node
	for _, n := range d.nodes {
		if n.message {
			out = append(out, n)
		}
		out = append(out, matcher{}.Descendants(n)...)
	}
	return out
}

type nopSink struct{}

func (nopSink) SetVisible(*node, bool) {}

func TestWatcher_WithVirtualizer(t *testing.T) {
	doc := &document{}
	for i := 0; i < 80; i++ {
		doc.nodes = append(doc.nodes, msg(fmt.Sprintf("turn-%d", i)))
	}

	v := window.NewVirtualizer(window.Options[*node]{
		Source:     doc,
		Sink:       nopSink{},
		Identity:   func(n *node) string { return n.id },
		KeepRecent: 50,
		ChunkSize:  20,
	})
	v.Refresh()
	v.Extend()
	r, _ := v.Cache().Window()
	require.Equal(t, 10, r.Lowest)

	obs := &observer{}
	w := New(Options[*node]{Target: v, Observer: obs, Matcher: matcher{}})
	require.NoError(t, w.Start())

	// The host inserts two new turns plus a re-render of an existing one.
	added := []*node{msg("turn-80"), doc.nodes[5], msg("turn-81")}
	doc.nodes = append(doc.nodes, added[0], added[2])
	obs.emit(Record[*node]{Added: added})

	require.Equal(t, window.Stats{Visible: 50, Total: 82}, v.Stats())
	r, _ = v.Cache().Window()
	require.Equal(t, 81, r.Highest)
	require.Equal(t, 32, r.Lowest, "refresh resets the window to the tail")
}
