// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the interactive transcript viewer.
//
// The bubbletea program is the event loop: tailer batches, navigator
// notices and timer ticks arrive as messages, and Update runs each to
// completion before the next. Only the newest messages are rendered; the
// window grows backward as the reader scrolls up and collapses back to the
// tail on refresh.
//
// # Keys
//
//   - up/k, down/j, PgUp, PgDn: scroll
//   - G/End: jump to the latest message
//   - o: toggle the stats overlay
//   - q/Ctrl+C: quit
package chat
