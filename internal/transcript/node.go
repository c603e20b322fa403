// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"time"
)

// Kind classifies a node.
type Kind int

const (
	// KindMeta is a record with nothing to display.
	KindMeta Kind = iota
	// KindMessage is a chat turn.
	KindMessage
	// KindGroup wraps several nodes appended together.
	KindGroup
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMeta:
		return "meta"
	case KindMessage:
		return "message"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is one element of a transcript.
type Node struct {
	Kind      Kind
	UUID      string // identity recorded in the file, may be empty
	ID        string // synthetic identity attached when UUID is empty
	Type      string // raw record type
	Role      string
	Text      string
	Timestamp time.Time
	Children  []*Node

	// Hidden is set by DisplaySink.
	Hidden bool
}

// Identity returns the node's natural identity, falling back to an attached
// synthetic one.
func (n *Node) Identity() string {
	if n.UUID != "" {
		return n.UUID
	}
	return n.ID
}

// IsMessage reports whether the node is a chat turn.
func (n *Node) IsMessage() bool {
	return n != nil && n.Kind == KindMessage
}

// Messages returns the message nodes under n, including n itself, in order.
func (n *Node) Messages() []*Node {
	if n == nil {
		return nil
	}
	if n.Kind == KindMessage {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c.Messages()...)
	}
	return out
}

// Group wraps nodes in a group node.
func Group(nodes ...*Node) *Node {
	return &Node{Kind: KindGroup, Children: nodes}
}
