// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch feeds newly inserted message elements into the visibility
// cache.
//
// A Watcher observes batches of insertion records. Each added element is fed
// to the cache directly when it is a message, otherwise its message
// descendants are fed. When at least one feed added a genuinely new message,
// exactly one refresh cycle runs for the whole batch.
package watch

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/window"
)

// ErrNoTarget is returned by Start when the watcher has nothing to feed.
var ErrNoTarget = errors.New("watch: target is required")

// =============================================================================
// COLLABORATORS
// =============================================================================

// Record is one insertion record: the elements added by a single mutation.
type Record[E any] struct {
	Added []E
}

// Observer delivers batches of records on the event loop.
type Observer[E any] interface {
	// Observe begins delivery to fn.
	Observe(fn func([]Record[E])) error
	// Disconnect ends delivery. No callbacks run afterwards.
	Disconnect()
}

// Matcher classifies added elements.
type Matcher[E any] interface {
	// Matches reports whether e itself is a message.
	Matches(e E) bool
	// Descendants returns the messages contained in e, in order.
	Descendants(e E) []E
}

// Target is what the watcher feeds, normally a window.Virtualizer.
type Target[E any] interface {
	AppendIfNew(e E) bool
	Refresh()
	Stats() window.Stats
}

// BatchResult summarizes one handled batch.
type BatchResult struct {
	Fed       int
	Added     int
	Refreshed bool
}

// =============================================================================
// WATCHER
// =============================================================================

// Options configures a Watcher.
type Options[E any] struct {
	Target   Target[E]
	Observer Observer[E]
	Matcher  Matcher[E]

	// OnRefresh runs after each refresh cycle, for presentation adapters.
	OnRefresh func(window.Stats)

	Logger *zap.Logger
}

// Watcher is stopped until Start and stopped again after Stop.
type Watcher[E any] struct {
	opts    Options[E]
	log     *zap.Logger
	running bool
}

// New creates a stopped Watcher.
func New[E any](opts Options[E]) *Watcher[E] {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Watcher[E]{
		opts: opts,
		log:  opts.Logger.Named("watch"),
	}
}

// Start begins observation. Starting a running watcher is a no-op.
func (w *Watcher[E]) Start() error {
	if w.running {
		return nil
	}
	if w.opts.Target == nil {
		return ErrNoTarget
	}
	if w.opts.Observer != nil {
		if err := w.opts.Observer.Observe(w.deliver); err != nil {
			return err
		}
	}
	w.running = true
	w.log.Debug("observer started")
	return nil
}

// Stop ends observation. Stopping a stopped watcher is a no-op.
func (w *Watcher[E]) Stop() {
	if !w.running {
		return
	}
	w.running = false
	if w.opts.Observer != nil {
		w.opts.Observer.Disconnect()
	}
	w.log.Debug("observer stopped")
}

// Running reports whether the watcher is started.
func (w *Watcher[E]) Running() bool {
	return w.running
}

func (w *Watcher[E]) deliver(batch []Record[E]) {
	if !w.running {
		return
	}
	w.Handle(batch)
}

// Handle processes one batch of records.
func (w *Watcher[E]) Handle(batch []Record[E]) BatchResult {
	var res BatchResult
	if w.opts.Target == nil {
		return res
	}

	feed := func(e E) {
		res.Fed++
		if w.opts.Target.AppendIfNew(e) {
			res.Added++
		}
	}

	for _, rec := range batch {
		for _, e := range rec.Added {
			if w.opts.Matcher == nil || w.opts.Matcher.Matches(e) {
				feed(e)
				continue
			}
			for _, d := range w.opts.Matcher.Descendants(e) {
				feed(d)
			}
		}
	}

	if res.Added == 0 {
		return res
	}

	w.log.Debug("new messages detected, refreshing",
		zap.Int("fed", res.Fed),
		zap.Int("added", res.Added))

	w.opts.Target.Refresh()
	res.Refreshed = true

	if w.opts.OnRefresh != nil {
		w.opts.OnRefresh(w.opts.Target.Stats())
	}
	return res
}
