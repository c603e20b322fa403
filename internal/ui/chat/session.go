// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/config"
	"github.com/jeranaias/longchat/internal/eventloop"
	"github.com/jeranaias/longchat/internal/lifecycle"
	"github.com/jeranaias/longchat/internal/scroll"
	"github.com/jeranaias/longchat/internal/transcript"
	"github.com/jeranaias/longchat/internal/watch"
	"github.com/jeranaias/longchat/internal/window"
)

// session is everything built for one open transcript. All of it is owned by
// the event loop; teardown goes through the lifecycle registry.
type session struct {
	path string
	dir  string
	doc  *transcript.Document

	virt    *window.Virtualizer[*transcript.Node]
	coord   *scroll.Coordinator
	watcher *watch.Watcher[*transcript.Node]
	tailer  *transcript.Tailer
	nav     *transcript.Navigator
}

// sessionDeps are the long-lived collaborators a session plugs into.
type sessionDeps struct {
	cfg      *config.Config
	loop     eventloop.Loop
	control  scroll.Control
	reporter scroll.Reporter
	log      *zap.Logger

	// onRefresh runs after the watcher refreshed the window.
	onRefresh func(window.Stats)
	// onReset runs when the file is truncated or replaced.
	onReset func()
}

// newSession builds the cache, coordinator and watcher for doc and runs the
// initial refresh. Nothing is observed until start.
func newSession(doc *transcript.Document, path, dir string, d sessionDeps) *session {
	s := &session{path: path, dir: dir, doc: doc}

	s.virt = window.NewVirtualizer(window.Options[*transcript.Node]{
		Source:     doc,
		Sink:       transcript.DisplaySink{},
		Identity:   transcript.Identity(d.log).Func(),
		KeepRecent: d.cfg.Window.KeepRecent,
		ChunkSize:  d.cfg.Window.ChunkSize,
		Logger:     d.log,
	})

	s.coord = scroll.New(scroll.Options{
		Extender:         s.virt,
		Stats:            s.virt,
		Control:          d.control,
		Reporter:         d.reporter,
		TopThreshold:     d.cfg.Scroll.TopThreshold,
		BottomRatio:      d.cfg.Scroll.BottomRatio,
		ForceMaxAttempts: d.cfg.Scroll.ForceMaxAttempts,
		ForceTolerance:   d.cfg.Scroll.ForceTolerance,
		ForceInterval:    d.cfg.Scroll.ForceInterval(),
		Logger:           d.log,
	})

	s.tailer = transcript.NewTailer(doc, transcript.TailerOptions{
		Loop:         d.loop,
		OnReset:      d.onReset,
		PollInterval: d.cfg.Watch.PollInterval(),
		ForcePolling: d.cfg.Watch.ForcePolling,
		Logger:       d.log,
	})

	s.watcher = watch.New(watch.Options[*transcript.Node]{
		Target:    s.virt,
		Observer:  s.tailer,
		Matcher:   transcript.Matcher{},
		OnRefresh: d.onRefresh,
		Logger:    d.log,
	})

	if dir != "" {
		s.nav = transcript.NewNavigator(dir, path, d.cfg.Watch.PollInterval(), d.loop, d.log)
	}

	s.virt.Refresh()
	return s
}

// start begins following the file (and the directory, if any) and registers
// every teardown with reg.
func (s *session) start(reg *lifecycle.Registry, onNavigate func(string)) error {
	if err := s.watcher.Start(); err != nil {
		return err
	}
	reg.Register(s.watcher.Stop)

	if s.nav != nil && onNavigate != nil {
		reg.Register(s.nav.Start(onNavigate))
	}
	return nil
}
