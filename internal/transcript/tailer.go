// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/eventloop"
	"github.com/jeranaias/longchat/internal/watch"
)

// ErrAlreadyObserving is returned when Observe is called twice.
var ErrAlreadyObserving = errors.New("transcript: tailer already observing")

// =============================================================================
// TAILER
// =============================================================================

// TailerOptions configures a Tailer.
type TailerOptions struct {
	// Loop runs every document mutation and callback.
	Loop eventloop.Loop
	// OnReset runs on the loop when the file is truncated, removed or renamed.
	OnReset func()
	// PollInterval is used by the polling fallback when fsnotify is
	// unavailable.
	PollInterval time.Duration
	// ForcePolling skips fsnotify.
	ForcePolling bool
	Logger       *zap.Logger
}

// Tailer follows a transcript file and delivers appended nodes as insertion
// records. It implements watch.Observer.
type Tailer struct {
	doc  *Document
	opts TailerOptions
	log  *zap.Logger

	// loop-owned
	fn func([]watch.Record[*Node])

	// goroutine-owned
	offset int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ watch.Observer[*Node] = (*Tailer)(nil)

// NewTailer creates a tailer that appends to doc.
func NewTailer(doc *Document, opts TailerOptions) *Tailer {
	if opts.Loop == nil {
		opts.Loop = eventloop.Inline{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Tailer{
		doc:  doc,
		opts: opts,
		log:  opts.Logger.Named("tailer"),
	}
}

// Observe starts following the file and delivers batches to fn on the loop.
func (t *Tailer) Observe(fn func([]watch.Record[*Node])) error {
	if t.cancel != nil {
		return ErrAlreadyObserving
	}
	t.fn = fn
	t.offset = t.doc.Offset()

	ctx, cancel := context.WithCancel(context.Background())

	if !t.opts.ForcePolling {
		fw, err := t.newFsnotify()
		if err == nil {
			t.cancel = cancel
			t.wg.Add(1)
			go t.runFsnotify(ctx, fw)
			t.log.Debug("following transcript", zap.String("path", t.doc.Path))
			return nil
		}
		t.log.Warn("fsnotify unavailable, polling", zap.Error(err))
	}

	t.cancel = cancel
	t.wg.Add(1)
	go t.runPolling(ctx)
	return nil
}

// Disconnect stops following. It must be called on the loop, and does not
// wait for the follower goroutine because that goroutine may itself be
// blocked posting to the loop. Use Wait for that.
func (t *Tailer) Disconnect() {
	t.fn = nil
	if t.cancel == nil {
		return
	}
	t.cancel()
	t.cancel = nil
	t.log.Debug("stopped following transcript", zap.String("path", t.doc.Path))
}

// Wait blocks until the follower goroutine has exited.
func (t *Tailer) Wait() {
	t.wg.Wait()
}

// newFsnotify watches the parent directory so that creation, truncation and
// replacement of the file are all seen.
func (t *Tailer) newFsnotify() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(t.doc.Path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(t.doc.Path), err)
	}
	return fw, nil
}

func (t *Tailer) runFsnotify(ctx context.Context, fw *fsnotify.Watcher) {
	defer t.wg.Done()
	defer fw.Close()

	target := filepath.Clean(t.doc.Path)

	// Records written between Load and Observe have no event of their own.
	t.readAppended()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				t.postReset("file removed")
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				t.readAppended()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			t.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (t *Tailer) runPolling(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.opts.PollInterval)
	defer ticker.Stop()

	t.readAppended()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := os.Stat(t.doc.Path); err != nil {
				t.postReset("file missing")
				continue
			}
			t.readAppended()
		}
	}
}

// readAppended reads complete records written since the last read and posts
// them to the loop as one batch.
func (t *Tailer) readAppended() {
	f, err := os.Open(t.doc.Path)
	if err != nil {
		t.log.Debug("open failed", zap.Error(err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}
	if info.Size() < t.offset {
		t.offset = 0
		t.postReset("file truncated")
		return
	}
	if info.Size() == t.offset {
		return
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return
	}
	nodes, consumed, err := ReadRecords(f, t.log)
	if err != nil {
		t.log.Warn("read failed", zap.Error(err))
	}
	if consumed == 0 {
		return
	}
	t.offset += consumed
	offset := t.offset

	if len(nodes) == 0 {
		t.opts.Loop.Post(func() { t.doc.SetOffset(offset) })
		return
	}

	// Several records appended in one write arrive wrapped in one group.
	added := nodes[0]
	if len(nodes) > 1 {
		added = Group(nodes...)
	}

	t.opts.Loop.Post(func() {
		if t.fn == nil {
			return
		}
		t.doc.Append(added)
		t.doc.SetOffset(offset)
		t.fn([]watch.Record[*Node]{{Added: []*Node{added}}})
	})
}

func (t *Tailer) postReset(reason string) {
	t.log.Info("transcript reset", zap.String("reason", reason), zap.String("path", t.doc.Path))
	t.opts.Loop.Post(func() {
		if t.fn == nil || t.opts.OnReset == nil {
			return
		}
		t.opts.OnReset()
	})
}
