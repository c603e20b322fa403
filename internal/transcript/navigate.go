// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/eventloop"
	"github.com/jeranaias/longchat/internal/retry"
)

// Extension is the transcript file extension.
const Extension = ".jsonl"

// ErrNoTranscript is returned when a directory holds no transcripts.
var ErrNoTranscript = errors.New("transcript: no transcript found")

// Latest returns the most recently modified transcript in dir.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read transcript dir: %w", err)
	}

	var (
		best    string
		bestMod time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) {
			best = filepath.Join(dir, e.Name())
			bestMod = info.ModTime()
		}
	}
	if best == "" {
		return "", ErrNoTranscript
	}
	return best, nil
}

// Resolve turns a user-supplied path into the transcript to open. A directory
// resolves to its newest transcript.
func Resolve(path string) (file string, dir string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}
	if !info.IsDir() {
		return path, "", nil
	}
	file, err = Latest(path)
	return file, path, err
}

// WaitFor polls until path exists. The default policy never gives up, since a
// transcript may be created arbitrarily late.
func WaitFor(ctx context.Context, path string, p retry.Policy, logger *zap.Logger) error {
	return retry.PollLogged(ctx, p, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, logger, path)
}

// =============================================================================
// NAVIGATOR
// =============================================================================

// Navigator follows the newest transcript in a directory and reports when a
// different one becomes current.
type Navigator struct {
	dir      string
	interval time.Duration
	loop     eventloop.Loop
	log      *zap.Logger

	current string
	wg      sync.WaitGroup
}

// NewNavigator creates a navigator for dir, starting from current.
func NewNavigator(dir, current string, interval time.Duration, loop eventloop.Loop, logger *zap.Logger) *Navigator {
	if interval <= 0 {
		interval = time.Second
	}
	if loop == nil {
		loop = eventloop.Inline{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		dir:      dir,
		interval: interval,
		loop:     loop,
		log:      logger.Named("navigator"),
		current:  current,
	}
}

// Start polls the directory and posts onNavigate to the loop whenever the
// newest transcript changes. The returned function stops polling.
func (n *Navigator) Start(onNavigate func(path string)) func() {
	ctx, cancel := context.WithCancel(context.Background())

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				latest, err := Latest(n.dir)
				if err != nil || latest == n.current {
					continue
				}
				n.log.Info("newer transcript found", zap.String("path", latest))
				n.current = latest
				n.loop.Post(func() {
					if ctx.Err() == nil {
						onNavigate(latest)
					}
				})
			}
		}
	}()

	return cancel
}

// Wait blocks until the polling goroutine has exited.
func (n *Navigator) Wait() {
	n.wg.Wait()
}
