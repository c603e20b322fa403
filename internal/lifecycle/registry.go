// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lifecycle collects teardown functions so that every observer,
// listener and timer started for one transcript can be unwound at once when
// the viewer navigates to another.
package lifecycle

import "sync"

// Registry holds cleanup functions in registration order.
type Registry struct {
	mu  sync.Mutex
	fns []func()
}

// Register adds fn. Nil functions are ignored.
func (r *Registry) Register(fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.fns = append(r.fns, fn)
	r.mu.Unlock()
}

// CleanupAll runs every registered function once and empties the registry.
func (r *Registry) CleanupAll() {
	r.mu.Lock()
	fns := r.fns
	r.fns = nil
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of pending cleanups.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fns)
}
