// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/longchat/internal/transcript"
)

// callbackMsg carries a function posted to the event loop. Update runs it.
type callbackMsg struct {
	fn func()
}

// transcriptReadyMsg delivers a loaded transcript. dir is set when the
// viewer follows the newest transcript of a directory.
type transcriptReadyMsg struct {
	path string
	dir  string
	doc  *transcript.Document
}

// transcriptErrMsg reports a transcript that could not be opened.
type transcriptErrMsg struct {
	err error
}

// forceTickMsg drives one forced scroll attempt. Ticks from an earlier jump
// carry a stale gen and are dropped.
type forceTickMsg struct {
	gen int
}

// resumeMsg releases the scroll hold a jump took on sess.
type resumeMsg struct {
	sess *session
}
