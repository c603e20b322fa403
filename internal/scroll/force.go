// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroll

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/eventloop"
)

// Container is the scrollable area a forced scroll operates on.
type Container interface {
	// BottomOffset returns the distance between the last element's bottom
	// edge and the container's bottom edge. ok is false when there is no last
	// element.
	BottomOffset() (offset int, ok bool)
	// ScrollBy moves the scroll position by delta.
	ScrollBy(delta int)
}

// BeginForce starts a forced scroll, restarting any forced scroll already in
// progress.
func (c *Coordinator) BeginForce() {
	c.forcing = true
	c.attempts = 0
}

// StepForce runs one attempt and reports whether another attempt should be
// scheduled. The forced scroll always ends after ForceMaxAttempts steps.
func (c *Coordinator) StepForce(ct Container) bool {
	if !c.forcing {
		return false
	}
	c.attempts++

	if ct == nil || c.attempts >= c.opts.ForceMaxAttempts {
		c.endForce("attempts exhausted")
		return false
	}

	offset, ok := ct.BottomOffset()
	if !ok {
		c.endForce("no last element")
		return false
	}

	c.log.Debug("force scroll attempt",
		zap.Int("attempt", c.attempts),
		zap.Int("offset", offset))

	if offset > c.opts.ForceTolerance {
		ct.ScrollBy(offset)
		return true
	}

	c.endForce("converged")
	return false
}

// CancelForce stops a forced scroll in progress.
func (c *Coordinator) CancelForce() {
	if c.forcing {
		c.endForce("cancelled")
	}
}

func (c *Coordinator) endForce(reason string) {
	c.log.Debug("force scroll finished",
		zap.String("reason", reason),
		zap.Int("attempts", c.attempts))
	c.forcing = false
}

// ForceScroll drives a forced scroll from a ticker, running each step on loop.
// It returns once the forced scroll ends or ctx is done. Hosts with their own
// timers (the TUI uses tea.Tick) call BeginForce and StepForce directly.
func (c *Coordinator) ForceScroll(ctx context.Context, ct Container, loop eventloop.Loop) {
	finished := make(chan struct{})
	loop.Post(c.BeginForce)

	ticker := time.NewTicker(c.opts.ForceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			loop.Post(c.CancelForce)
			return
		case <-finished:
			return
		case <-ticker.C:
			loop.Post(func() {
				if !c.StepForce(ct) {
					select {
					case <-finished:
					default:
						close(finished)
					}
				}
			})
		}
	}
}
