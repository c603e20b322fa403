// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll turns scroll-position samples into window extension
// decisions and jump-to-latest control visibility.
//
// The Coordinator owns no index state. It calls an Extender when the user
// scrolls up close to the top, toggles the jump control depending on how close
// the view is to the bottom, and runs a bounded "force scroll to bottom" retry.
// While a forced scroll (or an explicit hold) is active, ordinary scroll
// samples are ignored so programmatic and user scrolling do not fight.
//
// # Usage
//
//	c := scroll.New(scroll.Options{
//	    Extender: virtualizer,
//	    Control:  button,
//	})
//	res := c.OnScroll(scroll.Sample{Top: vp.YOffset, ClientHeight: vp.Height, ScrollHeight: vp.TotalLineCount()})
package scroll
