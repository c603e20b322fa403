// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"time"

	"github.com/jeranaias/longchat/internal/retry"
	"github.com/jeranaias/longchat/internal/window"
)

type countingTarget struct {
	seen      map[string]bool
	appends   int
	refreshes int
}

func newCountingTarget(doc *Document) *countingTarget {
	c := &countingTarget{seen: make(map[string]bool)}
	for _, m := range doc.Select() {
		c.seen[m.Identity()] = true
	}
	return c
}

func (c *countingTarget) AppendIfNew(n *Node) bool {
	c.appends++
	if c.seen[n.Identity()] {
		return false
	}
	c.seen[n.Identity()] = true
	return true
}

func (c *countingTarget) Refresh() { c.refreshes++ }

func (c *countingTarget) Stats() window.Stats {
	return window.Stats{Total: len(c.seen), Visible: len(c.seen)}
}

func retryEvery(d time.Duration) retry.Policy {
	return retry.Unbounded(d)
}
