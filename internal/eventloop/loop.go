// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eventloop serializes callbacks onto a single logical thread.
//
// Every mutation of the visibility cache happens inside a callback posted to
// a Loop, so scroll samples, transcript batches and timer retries never
// interleave. The TUI implements Loop on top of the bubbletea program; the
// headless commands use Queue.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when posting to a stopped Queue.
var ErrClosed = errors.New("eventloop: closed")

// Loop accepts callbacks to run on the loop's thread.
type Loop interface {
	Post(fn func())
}

// =============================================================================
// INLINE
// =============================================================================

// Inline runs callbacks immediately on the caller's goroutine. It is only
// correct when all posters already share one goroutine, as in tests.
type Inline struct{}

// Post runs fn.
func (Inline) Post(fn func()) {
	if fn != nil {
		fn()
	}
}

// =============================================================================
// QUEUE
// =============================================================================

// Queue is a FIFO loop drained by a single Run goroutine.
type Queue struct {
	ch     chan func()
	done   chan struct{}
	closer sync.Once
}

// NewQueue creates a Queue with the given buffer size.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 64
	}
	return &Queue{
		ch:   make(chan func(), size),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It blocks while the buffer is full and drops fn once the
// queue has stopped.
func (q *Queue) Post(fn func()) {
	_ = q.TryPost(fn)
}

// TryPost is Post with an error for a stopped queue.
func (q *Queue) TryPost(fn func()) error {
	if fn == nil {
		return nil
	}
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- fn:
		return nil
	case <-q.done:
		return ErrClosed
	}
}

// Run executes callbacks in order until ctx is cancelled or Stop is called.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			q.Stop()
			return ctx.Err()
		case <-q.done:
			return nil
		case fn := <-q.ch:
			fn()
		}
	}
}

// Stop ends Run. Pending callbacks are discarded.
func (q *Queue) Stop() {
	q.closer.Do(func() { close(q.done) })
}
