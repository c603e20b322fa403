// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/longchat/internal/window"
)

func line(id, role, text string) string {
	return fmt.Sprintf(`{"id":%q,"role":%q,"content":%q}`+"\n", id, role, text)
}

func writeTranscript(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "")), 0o644))
	return path
}

func TestReadRecords_LeavesPartialLine(t *testing.T) {
	input := line("a", "user", "hi") + "\n" + `{"id":"b","role":"user"`
	nodes, consumed, err := ReadRecords(strings.NewReader(input), nil)

	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, int64(len(line("a", "user", "hi"))+1), consumed)
}

func TestReadRecords_SkipsMalformed(t *testing.T) {
	input := "not json\n" + line("a", "user", "hi")
	nodes, _, err := ReadRecords(strings.NewReader(input), nil)

	require.NoError(t, err)
	require.Len(t, nodes, 1)
}

func TestLoad(t *testing.T) {
	path := writeTranscript(t, t.TempDir(),
		line("a", "user", "one"),
		`{"type":"file-history-snapshot"}`+"\n",
		line("b", "assistant", "two"),
	)

	doc, err := Load(path, nil)
	require.NoError(t, err)
	require.Len(t, doc.Roots(), 3)
	require.Len(t, doc.Select(), 2)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, info.Size(), doc.Offset())
}

func TestLoad_SkipsOversizedRecord(t *testing.T) {
	huge := line("big", "assistant", strings.Repeat("x", maxLineSize+1024*1024))
	path := writeTranscript(t, t.TempDir(),
		line("a", "user", "before"),
		huge,
		line("b", "assistant", "after"),
	)

	doc, err := Load(path, nil)
	require.NoError(t, err)

	msgs := doc.Select()
	require.Len(t, msgs, 2)
	require.Equal(t, "a", msgs[0].UUID)
	require.Equal(t, "b", msgs[1].UUID)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, info.Size(), doc.Offset())
}

func TestReadRecords_OversizedPartialLineWaits(t *testing.T) {
	input := line("a", "user", "hi") + strings.Repeat("x", maxLineSize+1)
	nodes, consumed, err := ReadRecords(strings.NewReader(input), nil)

	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, int64(len(line("a", "user", "hi"))), consumed)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonl"), nil)
	require.Error(t, err)
}

func TestDocument_SelectFlattensGroups(t *testing.T) {
	doc := NewDocument("x")
	doc.Append(
		&Node{Kind: KindMessage, UUID: "1"},
		Group(&Node{Kind: KindMessage, UUID: "2"}, &Node{Kind: KindMeta}, Group(&Node{Kind: KindMessage, UUID: "3"})),
		&Node{Kind: KindMeta},
	)

	var ids []string
	for _, n := range doc.Select() {
		ids = append(ids, n.UUID)
	}
	require.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestMatcher(t *testing.T) {
	m := Matcher{}
	msg := &Node{Kind: KindMessage, UUID: "1"}
	g := Group(msg, &Node{Kind: KindMeta})

	require.True(t, m.Matches(msg))
	require.False(t, m.Matches(g))
	require.Equal(t, []*Node{msg}, m.Descendants(g))
	require.Empty(t, m.Descendants(nil))
	require.False(t, m.Matches(nil))
}

func TestVirtualizerOverDocument(t *testing.T) {
	var lines []string
	for i := 0; i < 80; i++ {
		id := fmt.Sprintf("turn-%d", i)
		if i == 7 {
			id = ""
		}
		lines = append(lines, line(id, "user", fmt.Sprintf("message %d", i)))
	}
	doc, err := Load(writeTranscript(t, t.TempDir(), lines...), nil)
	require.NoError(t, err)

	v := window.NewVirtualizer(window.Options[*Node]{
		Source:     doc,
		Sink:       DisplaySink{},
		Identity:   Identity(nil).Func(),
		KeepRecent: 50,
		ChunkSize:  20,
	})
	v.Refresh()

	require.Equal(t, window.Stats{Visible: 50, Total: 80}, v.Stats())
	nodes := doc.Select()
	require.True(t, nodes[29].Hidden)
	require.False(t, nodes[30].Hidden)
	require.NotEmpty(t, nodes[7].ID, "missing identity is synthesized and attached")

	synthetic := nodes[7].ID
	v.Refresh()
	require.Equal(t, synthetic, nodes[7].Identity())
	require.Equal(t, 80, v.Stats().Total)
}
