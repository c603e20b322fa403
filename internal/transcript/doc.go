// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript reads append-only JSONL chat transcripts and exposes
// them to the visibility cache.
//
// A Document is the host of every message node: the cache only references
// nodes, never creates them. A Tailer follows the file with fsnotify and
// delivers newly appended nodes as insertion records on the event loop, and a
// Navigator follows the newest transcript in a directory.
//
// # Record Formats
//
// Two line shapes are understood:
//
//	{"type":"user","uuid":"...","timestamp":"...","message":{"role":"user","content":"..."}}
//	{"id":"...","role":"assistant","content":"..."}
//
// Content may be a plain string or an array of {"type":"text","text":"..."}
// blocks. Lines that carry no displayable text are kept as Meta nodes.
package transcript
