// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/transcript"
	"github.com/jeranaias/longchat/internal/ui/styles"
	"github.com/jeranaias/longchat/internal/util"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// Rendered is the viewport content for the visible messages.
type Rendered struct {
	Content string
	Lines   int
	Shown   int
	Hidden  int
}

// MessageRenderer turns visible transcript messages into viewport content.
// Hidden messages are skipped entirely. Rendered blocks are cached by
// identity; the cache is dropped when the width changes.
type MessageRenderer struct {
	theme    *styles.Theme
	width    int
	markdown bool
	log      *zap.Logger

	md    *glamour.TermRenderer
	cache map[string]string
}

// NewMessageRenderer creates a renderer. markdown selects glamour rendering
// of message bodies.
func NewMessageRenderer(theme *styles.Theme, markdown bool, logger *zap.Logger) *MessageRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageRenderer{
		theme:    theme,
		width:    80,
		markdown: markdown,
		log:      logger.Named("render"),
		cache:    make(map[string]string),
	}
}

// SetWidth sets the wrap width. A change invalidates cached blocks.
func (r *MessageRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width {
		return
	}
	r.width = width
	r.cache = make(map[string]string)
	r.md = nil
}

// Reset drops every cached block, used when the transcript is replaced.
func (r *MessageRenderer) Reset() {
	r.cache = make(map[string]string)
}

// CacheLen returns the number of cached blocks.
func (r *MessageRenderer) CacheLen() int {
	return len(r.cache)
}

// Render renders the visible messages of nodes in order.
func (r *MessageRenderer) Render(nodes []*transcript.Node) Rendered {
	var (
		out    Rendered
		blocks []string
	)
	for _, n := range nodes {
		if n.Hidden {
			out.Hidden++
			continue
		}
		blocks = append(blocks, r.block(n))
		out.Shown++
	}

	out.Content = strings.Join(blocks, "\n")
	if out.Content != "" {
		out.Lines = strings.Count(out.Content, "\n") + 1
	}
	return out
}

func (r *MessageRenderer) block(n *transcript.Node) string {
	key := n.Identity()
	if key != "" {
		if s, ok := r.cache[key]; ok {
			return s
		}
	}

	s := r.header(n) + "\n" + r.body(n.Text) + "\n" + r.separator()
	if key != "" {
		r.cache[key] = s
	}
	return s
}

func (r *MessageRenderer) header(n *transcript.Node) string {
	role := n.Role
	if role == "" {
		role = n.Type
	}
	label := r.theme.RoleLabel(role).Render(strings.ToUpper(role))
	if n.Timestamp.IsZero() {
		return label
	}
	return label + " " + r.theme.Timestamp.Render(n.Timestamp.Local().Format("15:04:05"))
}

func (r *MessageRenderer) body(text string) string {
	if strings.TrimSpace(text) == "" {
		return r.theme.Timestamp.Render("  (no text)")
	}

	if r.markdown {
		if out, ok := r.renderMarkdown(text); ok {
			return strings.TrimRight(out, "\n")
		}
	}

	return r.theme.Body.Width(r.width).Render(text)
}

// renderMarkdown renders text with glamour, falling back to plain text when
// the renderer cannot be built or fails.
func (r *MessageRenderer) renderMarkdown(text string) (string, bool) {
	if r.md == nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.theme.GlamourStyle()),
			glamour.WithWordWrap(r.width-2),
		)
		if err != nil {
			r.log.Warn("markdown renderer unavailable", zap.Error(err))
			r.markdown = false
			return "", false
		}
		r.md = md
	}

	out, err := r.md.Render(text)
	if err != nil {
		r.log.Debug("markdown render failed", zap.Error(err))
		return "", false
	}
	return out, true
}

func (r *MessageRenderer) separator() string {
	return r.theme.Separator.Render(strings.Repeat("-", maxInt(1, r.width)))
}

// Preview returns a one-line summary of n fitted to width cells.
func Preview(n *transcript.Node, width int) string {
	line := util.FirstLine(n.Text)
	if n.Role != "" {
		line = n.Role + ": " + line
	}
	return util.Truncate(line, width)
}

// PlaceholderView renders centered placeholder text in a box of the given
// size.
func PlaceholderView(text string, width, height int, style lipgloss.Style) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, style.Render(text))
}
