// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

import (
	"go.uber.org/zap"
)

// Default knob values.
const (
	DefaultKeepRecent = 50
	DefaultChunkSize  = 20
)

// Options configures a Virtualizer.
type Options[E any] struct {
	Source     Source[E]
	Sink       Sink[E]
	Identity   IdentityFunc[E]
	KeepRecent int
	ChunkSize  int
	Logger     *zap.Logger
}

// Virtualizer binds a Cache to its element source, visibility sink and
// window knobs, and runs the composite cycles callers need.
type Virtualizer[E any] struct {
	cache      *Cache[E]
	source     Source[E]
	sink       Sink[E]
	keepRecent int
	chunkSize  int
	log        *zap.Logger
}

// NewVirtualizer creates a Virtualizer. Zero knobs fall back to the defaults.
func NewVirtualizer[E any](opts Options[E]) *Virtualizer[E] {
	if opts.KeepRecent < 1 {
		opts.KeepRecent = DefaultKeepRecent
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Virtualizer[E]{
		cache:      NewCache(opts.Identity),
		source:     opts.Source,
		sink:       opts.Sink,
		keepRecent: opts.KeepRecent,
		chunkSize:  opts.ChunkSize,
		log:        opts.Logger.Named("window"),
	}
}

// Refresh rebuilds the cache from the source, resets the window to the tail
// and resyncs the sink.
func (v *Virtualizer[E]) Refresh() {
	v.cache.Rebuild(v.source)
	v.log.Debug("cache rebuilt", zap.Int("total", v.cache.Len()))

	v.cache.RecomputeWindow(v.keepRecent)
	if r, ok := v.cache.Window(); ok {
		v.log.Debug("window recomputed",
			zap.Int("lowest", r.Lowest),
			zap.Int("highest", r.Highest))
	}

	v.Resync()
}

// Extend moves the window back by one chunk and resyncs only when it moved.
func (v *Virtualizer[E]) Extend() bool {
	if !v.cache.ExtendBackward(v.chunkSize) {
		return false
	}
	v.Resync()
	return true
}

// Resync applies the current window to the sink.
func (v *Virtualizer[E]) Resync() {
	v.cache.Resync(v.sink)
	v.log.Debug("sink resynced", zap.Int("visible", v.cache.Stats().Visible))
}

// AppendIfNew forwards to the cache.
func (v *Virtualizer[E]) AppendIfNew(e E) bool {
	return v.cache.AppendIfNew(e)
}

// SetSource swaps the element source, used on navigation. The cache is left
// untouched until the next Refresh.
func (v *Virtualizer[E]) SetSource(src Source[E]) {
	v.source = src
}

// Stats returns the cache statistics.
func (v *Virtualizer[E]) Stats() Stats {
	return v.cache.Stats()
}

// Cache exposes the underlying cache for read access.
func (v *Virtualizer[E]) Cache() *Cache[E] {
	return v.cache
}

// KeepRecent returns the configured tail window size.
func (v *Virtualizer[E]) KeepRecent() int {
	return v.keepRecent
}

// ChunkSize returns the configured backward extension step.
func (v *Virtualizer[E]) ChunkSize() int {
	return v.chunkSize
}
