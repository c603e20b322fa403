// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/longchat/internal/ui/styles"
	"github.com/jeranaias/longchat/internal/util"
)

// =============================================================================
// TOASTS - Non-blocking notices that dismiss themselves
// =============================================================================

// ToastKind selects the color and icon of a toast.
type ToastKind int

const (
	// ToastStatus is informational (cyan).
	ToastStatus ToastKind = iota
	// ToastWarning is a warning (amber).
	ToastWarning
	// ToastError is an error (rose).
	ToastError
)

// Toast durations by kind. Errors stay longer so they can be read.
const (
	StatusToastDuration  = 4 * time.Second
	WarningToastDuration = 6 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// maxToasts is how many toasts are kept; older ones are dropped.
const maxToasts = 3

// Toast is one notice.
type Toast struct {
	ID       int
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

// ToastExpiredMsg is delivered when a toast's duration has passed.
type ToastExpiredMsg struct {
	ID int
}

// Toasts holds the active notices, newest first. It is owned by the
// bubbletea goroutine.
type Toasts struct {
	theme  *styles.Theme
	items  []Toast
	nextID int
}

// NewToasts creates an empty toast list.
func NewToasts(theme *styles.Theme) *Toasts {
	return &Toasts{theme: theme, nextID: 1}
}

// Add shows a toast and returns the command that expires it.
func (t *Toasts) Add(kind ToastKind, message string) tea.Cmd {
	toast := Toast{
		ID:       t.nextID,
		Message:  message,
		Kind:     kind,
		Duration: durationFor(kind),
	}
	t.nextID++

	t.items = append([]Toast{toast}, t.items...)
	if len(t.items) > maxToasts {
		t.items = t.items[:maxToasts]
	}

	id := toast.ID
	return tea.Tick(toast.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Dismiss removes the toast with id, if it is still shown.
func (t *Toasts) Dismiss(id int) {
	for i, toast := range t.items {
		if toast.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Items returns the active toasts, newest first.
func (t *Toasts) Items() []Toast {
	return t.items
}

// Len returns the number of active toasts.
func (t *Toasts) Len() int {
	return len(t.items)
}

// View renders the newest toast on one line of at most width cells, or ""
// when nothing is shown.
func (t *Toasts) View(width int) string {
	if len(t.items) == 0 || width <= 0 {
		return ""
	}
	toast := t.items[0]

	icon, color := "i", styles.Cyan
	switch toast.Kind {
	case ToastWarning:
		icon, color = "!", styles.Amber
	case ToastError:
		icon, color = "x", styles.Rose
	}

	prefix := lipgloss.NewStyle().Foreground(color).Bold(true).Render("[" + icon + "] ")
	text := util.Truncate(toast.Message, maxInt(1, width-lipgloss.Width(prefix)))
	return prefix + t.theme.OverlayValue.Render(text)
}

func durationFor(kind ToastKind) time.Duration {
	switch kind {
	case ToastWarning:
		return WarningToastDuration
	case ToastError:
		return ErrorToastDuration
	default:
		return StatusToastDuration
	}
}
