// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/ident"
)

// Matcher classifies nodes for the mutation watcher.
type Matcher struct{}

// Matches reports whether n is a chat turn.
func (Matcher) Matches(n *Node) bool {
	return n.IsMessage()
}

// Descendants returns the chat turns wrapped by n.
func (Matcher) Descendants(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c.Messages()...)
	}
	return out
}

// DisplaySink marks nodes shown or hidden. The renderer skips hidden nodes.
type DisplaySink struct{}

// SetVisible sets n.Hidden.
func (DisplaySink) SetVisible(n *Node, visible bool) {
	n.Hidden = !visible
}

// Identity builds the identity resolver for transcript nodes. Nodes without a
// recorded uuid get a synthetic identity stored in Node.ID.
func Identity(logger *zap.Logger) *ident.Resolver[*Node] {
	return ident.New(
		(*Node).Identity,
		func(n *Node, id string) { n.ID = id },
		logger,
	)
}
