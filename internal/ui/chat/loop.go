// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/longchat/internal/eventloop"
)

// ProgramLoop is the event loop of the TUI: posted functions are sent to the
// bubbletea program and run inside Update, so they never interleave with key
// handling or rendering.
type ProgramLoop struct {
	mu      sync.Mutex
	program *tea.Program
	pending []func()
}

var _ eventloop.Loop = (*ProgramLoop)(nil)

// NewProgramLoop creates a loop. Functions posted before Attach are held
// and sent on Attach.
func NewProgramLoop() *ProgramLoop {
	return &ProgramLoop{}
}

// Attach binds the loop to p. It may be called before p.Run; held functions
// are sent from their own goroutine since Send blocks until the program reads.
func (l *ProgramLoop) Attach(p *tea.Program) {
	l.mu.Lock()
	l.program = p
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	go func() {
		for _, fn := range pending {
			l.send(p, fn)
		}
	}()
}

// Post sends fn to the program. Send returns without delivering once the
// program has exited.
func (l *ProgramLoop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	p := l.program
	if p == nil {
		l.pending = append(l.pending, fn)
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	l.send(p, fn)
}

func (l *ProgramLoop) send(p *tea.Program, fn func()) {
	p.Send(callbackMsg{fn: fn})
}
