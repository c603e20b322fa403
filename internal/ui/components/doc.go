// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components of the longchat viewer.
//
// # Key Types
//
//   - TranscriptViewport: scrollable message area, the scroll container
//   - MessageRenderer: renders visible messages, markdown via glamour
//   - StatsOverlay: cache statistics and scroll position
//   - ScrollButton: jump-to-latest control
//   - WaitSpinner: shown until the transcript exists
//   - StatusBar: status, transcript name and key hints
//   - Toasts: self-dismissing notices (transcript reset, newer transcript)
//
// Components hold no transcript state of their own. They read node
// visibility and cache statistics and never change either.
package components
