// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

type rawContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type rawRecord struct {
	Type      string          `json:"type"`
	UUID      string          `json:"uuid"`
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Timestamp string          `json:"timestamp"`
	Message   *struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// ParseLine decodes one JSONL record into a node.
func ParseLine(line []byte) (*Node, error) {
	var rec rawRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("decode transcript line: %w", err)
	}

	n := &Node{
		Kind: KindMeta,
		Type: rec.Type,
		UUID: rec.UUID,
	}
	if n.UUID == "" {
		n.UUID = rec.ID
	}
	if rec.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp); err == nil {
			n.Timestamp = ts
		}
	}

	role, content := rec.Role, rec.Content
	if rec.Message != nil {
		if rec.Message.Role != "" {
			role = rec.Message.Role
		}
		if len(rec.Message.Content) > 0 {
			content = rec.Message.Content
		}
	}
	if role == "" && (rec.Type == "user" || rec.Type == "assistant" || rec.Type == "system") {
		role = rec.Type
	}
	n.Role = role

	text := extractText(content)
	if role != "" && text != "" {
		n.Kind = KindMessage
		n.Text = norm.NFC.String(text)
	}
	return n, nil
}

// extractText returns the displayable text of a content field, which is
// either a string or a list of content blocks.
func extractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var blocks []rawContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && strings.TrimSpace(b.Text) != "" {
			parts = append(parts, strings.TrimSpace(b.Text))
		}
	}
	return strings.Join(parts, "\n")
}
