// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/longchat/internal/eventloop"
	"github.com/jeranaias/longchat/internal/watch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// runLoop drains a queue in the background for the duration of a test.
func runLoop(t *testing.T) *eventloop.Queue {
	t.Helper()
	q := eventloop.NewQueue(32)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = q.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return q
}

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
	}
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

// collect gathers message nodes from delivered batches until want arrive.
func collect(t *testing.T, ch <-chan []watch.Record[*Node], want int) []*Node {
	t.Helper()
	var got []*Node
	deadline := time.After(5 * time.Second)
	for len(got) < want {
		select {
		case batch := <-ch:
			for _, rec := range batch {
				for _, n := range rec.Added {
					got = append(got, n.Messages()...)
				}
			}
		case <-deadline:
			t.Fatalf("timed out with %d of %d messages", len(got), want)
		}
	}
	return got
}

func testTailer(t *testing.T, polling bool) {
	path := writeTranscript(t, t.TempDir(), line("a", "user", "first"))
	doc, err := Load(path, nil)
	require.NoError(t, err)

	loop := runLoop(t)
	tl := NewTailer(doc, TailerOptions{
		Loop:         loop,
		ForcePolling: polling,
		PollInterval: 10 * time.Millisecond,
	})

	batches := make(chan []watch.Record[*Node], 16)
	observed := make(chan error, 1)
	loop.Post(func() {
		observed <- tl.Observe(func(b []watch.Record[*Node]) { batches <- b })
	})
	require.NoError(t, <-observed)

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)

	appendLines(t, path, line("b", "assistant", "second"))
	got := collect(t, batches, 1)
	require.Equal(t, "b", got[0].UUID)

	appendLines(t, path, line("c", "user", "x"), line("d", "assistant", "y"), line("e", "user", "z"))
	got = collect(t, batches, 3)
	require.Equal(t, []string{"c", "d", "e"}, []string{got[0].UUID, got[1].UUID, got[2].UUID})

	selected := make(chan int, 1)
	loop.Post(func() {
		selected <- len(doc.Select())
		tl.Disconnect()
		tl.Disconnect()
	})
	require.Equal(t, 5, <-selected)
	tl.Wait()
}

func TestTailer_Fsnotify(t *testing.T) {
	testTailer(t, false)
}

func TestTailer_Polling(t *testing.T) {
	testTailer(t, true)
}

// Records appended after Load but before Observe must still be delivered,
// without waiting for another write.
func TestTailer_CatchesUpAfterLoad(t *testing.T) {
	for _, polling := range []bool{false, true} {
		t.Run(fmt.Sprintf("polling=%v", polling), func(t *testing.T) {
			path := writeTranscript(t, t.TempDir(), line("a", "user", "first"))
			doc, err := Load(path, nil)
			require.NoError(t, err)

			appendLines(t, path, line("b", "assistant", "written before observe"))

			loop := runLoop(t)
			tl := NewTailer(doc, TailerOptions{
				Loop:         loop,
				ForcePolling: polling,
				PollInterval: time.Hour,
			})

			batches := make(chan []watch.Record[*Node], 16)
			observed := make(chan error, 1)
			loop.Post(func() {
				observed <- tl.Observe(func(b []watch.Record[*Node]) { batches <- b })
			})
			require.NoError(t, <-observed)

			got := collect(t, batches, 1)
			require.Equal(t, "b", got[0].UUID)

			loop.Post(tl.Disconnect)
			tl.Wait()
		})
	}
}

func TestTailer_SkipsOversizedAppend(t *testing.T) {
	path := writeTranscript(t, t.TempDir(), line("a", "user", "first"))
	doc, err := Load(path, nil)
	require.NoError(t, err)

	loop := runLoop(t)
	tl := NewTailer(doc, TailerOptions{
		Loop:         loop,
		ForcePolling: true,
		PollInterval: 10 * time.Millisecond,
	})

	batches := make(chan []watch.Record[*Node], 16)
	observed := make(chan error, 1)
	loop.Post(func() {
		observed <- tl.Observe(func(b []watch.Record[*Node]) { batches <- b })
	})
	require.NoError(t, <-observed)

	appendLines(t, path, line("big", "assistant", strings.Repeat("x", maxLineSize+1)))
	appendLines(t, path, line("c", "user", "after"))

	got := collect(t, batches, 1)
	require.Equal(t, "c", got[0].UUID)

	loop.Post(tl.Disconnect)
	tl.Wait()
}

func TestTailer_GroupsMultiLineWrites(t *testing.T) {
	path := writeTranscript(t, t.TempDir())
	doc, err := Load(path, nil)
	require.NoError(t, err)

	var got []watch.Record[*Node]
	tl := NewTailer(doc, TailerOptions{})
	tl.fn = func(b []watch.Record[*Node]) { got = append(got, b...) }

	appendLines(t, path, line("a", "user", "1"), line("b", "user", "2"))
	tl.readAppended()

	require.Len(t, got, 1)
	require.Len(t, got[0].Added, 1)
	require.Equal(t, KindGroup, got[0].Added[0].Kind)
	require.Len(t, doc.Select(), 2)

	appendLines(t, path, line("c", "user", "3"))
	tl.readAppended()
	require.Len(t, got, 2)
	require.Equal(t, KindMessage, got[1].Added[0].Kind)
}

func TestTailer_TruncationResets(t *testing.T) {
	path := writeTranscript(t, t.TempDir(), line("a", "user", "1"), line("b", "user", "2"))
	doc, err := Load(path, nil)
	require.NoError(t, err)

	resets := 0
	tl := NewTailer(doc, TailerOptions{OnReset: func() { resets++ }})
	tl.fn = func([]watch.Record[*Node]) {}
	tl.offset = doc.Offset()

	require.NoError(t, os.WriteFile(path, []byte(line("z", "user", "new")), 0o644))
	tl.readAppended()
	require.Equal(t, 1, resets)

	// No callbacks once disconnected.
	tl.Disconnect()
	tl.postReset("test")
	require.Equal(t, 1, resets)
}

func TestTailer_ObserveTwice(t *testing.T) {
	path := writeTranscript(t, t.TempDir(), line("a", "user", "1"))
	doc, err := Load(path, nil)
	require.NoError(t, err)

	tl := NewTailer(doc, TailerOptions{ForcePolling: true, PollInterval: time.Hour})
	require.NoError(t, tl.Observe(func([]watch.Record[*Node]) {}))
	require.ErrorIs(t, tl.Observe(func([]watch.Record[*Node]) {}), ErrAlreadyObserving)
	tl.Disconnect()
	tl.Wait()
}

func TestTailer_WithWatcher(t *testing.T) {
	path := writeTranscript(t, t.TempDir(), line("a", "user", "1"))
	doc, err := Load(path, nil)
	require.NoError(t, err)

	tgt := newCountingTarget(doc)
	tl := NewTailer(doc, TailerOptions{ForcePolling: true, PollInterval: time.Hour})
	w := watch.New(watch.Options[*Node]{Target: tgt, Observer: tl, Matcher: Matcher{}})
	require.NoError(t, w.Start())

	appendLines(t, path, line("b", "user", "2"), line("a", "user", "dup"), line("c", "user", "3"))
	tl.readAppended()

	require.Equal(t, 3, tgt.appends)
	require.Equal(t, 1, tgt.refreshes)
	require.Equal(t, 3, len(tgt.seen))

	w.Stop()
	tl.Wait()
}

func TestLatestAndResolve(t *testing.T) {
	dir := t.TempDir()
	_, err := Latest(dir)
	require.ErrorIs(t, err, ErrNoTranscript)

	older := filepath.Join(dir, "old.jsonl")
	newer := filepath.Join(dir, "new.jsonl")
	require.NoError(t, os.WriteFile(older, nil, 0o644))
	require.NoError(t, os.WriteFile(newer, nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	got, err := Latest(dir)
	require.NoError(t, err)
	require.Equal(t, newer, got)

	file, followDir, err := Resolve(dir)
	require.NoError(t, err)
	require.Equal(t, newer, file)
	require.Equal(t, dir, followDir)

	file, followDir, err = Resolve(older)
	require.NoError(t, err)
	require.Equal(t, older, file)
	require.Empty(t, followDir)
}

func TestNavigator(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.jsonl")
	require.NoError(t, os.WriteFile(first, nil, 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(first, past, past))

	loop := runLoop(t)
	nav := NewNavigator(dir, first, 10*time.Millisecond, loop, nil)
	got := make(chan string, 4)
	stop := nav.Start(func(p string) { got <- p })

	second := filepath.Join(dir, "b.jsonl")
	require.NoError(t, os.WriteFile(second, nil, 0o644))

	select {
	case p := <-got:
		require.Equal(t, second, p)
	case <-time.After(5 * time.Second):
		t.Fatal("navigator did not report the new transcript")
	}

	stop()
	nav.Wait()
}

func TestWaitFor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.jsonl")
	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, nil, 0o644)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitFor(ctx, path, retryEvery(5*time.Millisecond), nil))
}
