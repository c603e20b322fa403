// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package window implements the windowed visibility cache used to virtualize
// long chat transcripts.
//
// The cache owns an ordered, append-only sequence of message handles, a map
// from identity to handle for O(1) duplicate checks, and the visible index
// range. Only the newest messages are visible by default (the tail window);
// the lower bound moves backward in chunks as the user scrolls up, and is
// reset to the tail window on every full rebuild.
//
// # Key Types
//
//   - Cache: the ordered sequence, identity map and visible range
//   - Virtualizer: a Cache bound to its source, sink and knobs
//   - Source, Sink: the collaborators that supply and display elements
//
// # Usage
//
//	v := window.NewVirtualizer(window.Options[*transcript.Node]{
//	    Source:     doc,
//	    Sink:       transcript.DisplaySink{},
//	    Identity:   resolver.Func(),
//	    KeepRecent: 50,
//	    ChunkSize:  20,
//	})
//	v.Refresh()
//	if v.Extend() {
//	    // older messages are now visible
//	}
//
// The cache is not safe for concurrent use. Callers serialize access through
// a single event loop (see package eventloop).
package window
