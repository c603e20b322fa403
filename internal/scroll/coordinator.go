// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroll

import (
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/window"
)

// Default knob values. Distances are in rows.
const (
	DefaultTopThreshold     = 3
	DefaultBottomRatio      = 0.05
	DefaultForceMaxAttempts = 10
	DefaultForceTolerance   = 0
	DefaultForceInterval    = 100 * time.Millisecond
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Sample is one scroll position reading of the container.
type Sample struct {
	Top          int
	ClientHeight int
	ScrollHeight int
}

// Extender grows the visible window backward and resyncs when it changed.
type Extender interface {
	Extend() bool
}

// StatsSource reports cache statistics for the overlay.
type StatsSource interface {
	Stats() window.Stats
}

// Control is the jump-to-latest control.
type Control interface {
	SetVisible(visible bool)
}

// Report is passed to the Reporter after every processed sample.
type Report struct {
	Stats  window.Stats
	Sample Sample
}

// Reporter receives scroll reports, typically the stats overlay.
type Reporter func(Report)

// Result describes what a sample triggered.
type Result struct {
	Skipped     bool
	ScrollingUp bool
	TopTrigger  bool
	NearBottom  bool
	Extended    bool
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Options configures a Coordinator. Zero values use the defaults.
type Options struct {
	Extender Extender
	Stats    StatsSource
	Control  Control
	Reporter Reporter

	TopThreshold     int
	BottomRatio      float64
	ForceMaxAttempts int
	ForceTolerance   int
	ForceInterval    time.Duration

	Logger *zap.Logger
}

// Coordinator processes scroll samples. It is not safe for concurrent use;
// all calls must come from the event loop.
type Coordinator struct {
	opts    Options
	log     *zap.Logger
	lastTop int

	forcing  bool
	attempts int
	holds    int
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	if opts.TopThreshold <= 0 {
		opts.TopThreshold = DefaultTopThreshold
	}
	if opts.BottomRatio <= 0 {
		opts.BottomRatio = DefaultBottomRatio
	}
	if opts.ForceMaxAttempts <= 0 {
		opts.ForceMaxAttempts = DefaultForceMaxAttempts
	}
	if opts.ForceTolerance < 0 {
		opts.ForceTolerance = DefaultForceTolerance
	}
	if opts.ForceInterval <= 0 {
		opts.ForceInterval = DefaultForceInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Coordinator{
		opts: opts,
		log:  opts.Logger.Named("scroll"),
	}
}

// OnScroll processes one sample.
func (c *Coordinator) OnScroll(s Sample) Result {
	if c.Suspended() {
		return Result{Skipped: true}
	}

	res := Result{
		ScrollingUp: s.Top < c.lastTop,
		TopTrigger:  s.Top < c.opts.TopThreshold,
		NearBottom:  NearBottom(s, c.opts.BottomRatio),
	}
	c.lastTop = s.Top

	c.log.Debug("scroll sample",
		zap.Int("top", s.Top),
		zap.Bool("up", res.ScrollingUp),
		zap.Bool("top_trigger", res.TopTrigger))

	if res.ScrollingUp && res.TopTrigger && c.opts.Extender != nil {
		res.Extended = c.opts.Extender.Extend()
	}

	if c.opts.Control != nil {
		c.opts.Control.SetVisible(!res.NearBottom)
	}

	if c.opts.Reporter != nil {
		r := Report{Sample: s}
		if c.opts.Stats != nil {
			r.Stats = c.opts.Stats.Stats()
		}
		c.opts.Reporter(r)
	}

	return res
}

// NearBottom reports whether the sample is within ClientHeight*ratio of the
// bottom edge.
func NearBottom(s Sample, ratio float64) bool {
	threshold := float64(s.ClientHeight) * ratio
	return float64(s.Top+s.ClientHeight) >= float64(s.ScrollHeight)-threshold
}

// SetLastTop records a position without treating it as a user scroll, used
// after the host shifts the offset to compensate for prepended content.
func (c *Coordinator) SetLastTop(top int) {
	c.lastTop = top
}

// LastTop returns the last processed scroll position.
func (c *Coordinator) LastTop() int {
	return c.lastTop
}

// =============================================================================
// SUSPENSION
// =============================================================================

// Suspended reports whether scroll samples are currently ignored.
func (c *Coordinator) Suspended() bool {
	return c.forcing || c.holds > 0
}

// Hold suspends sample processing until the matching Release.
func (c *Coordinator) Hold() {
	c.holds++
}

// Release undoes one Hold.
func (c *Coordinator) Release() {
	if c.holds > 0 {
		c.holds--
	}
}

// Forcing reports whether a forced scroll is in progress.
func (c *Coordinator) Forcing() bool {
	return c.forcing
}

// ForceInterval is the delay between forced scroll attempts.
func (c *Coordinator) ForceInterval() time.Duration {
	return c.opts.ForceInterval
}
