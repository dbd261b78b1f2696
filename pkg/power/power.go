// Cyberdeck Core
// Copyright (c) 2025 The Cyberdeck Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Cyberdeck Core.
//
// Cyberdeck Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Cyberdeck Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Cyberdeck Core.  If not, see <http://www.gnu.org/licenses/>.

// Package power ties the touchscreen backlight to the X session's
// screensaver: backlight off while the screensaver is active, back on
// when it deactivates. The DSI panel keeps its backlight lit when X
// blanks, so without this the "off" screen still glows.
package power

import (
	"sync"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/backlight"
	"github.com/rs/zerolog/log"
)

// Event sources.
const (
	SourceDBus         = "dbus"
	SourceXScreensaver = "xscreensaver"
)

// Event is one screensaver state transition. Active means the
// screensaver turned on (screen blanked).
type Event struct {
	Source string
	Active bool
}

// Detector watches the session for screensaver transitions.
type Detector interface {
	// Events delivers transitions until Stop. The channel is closed by
	// Stop.
	Events() <-chan Event
	Start() error
	Stop()
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Detector  Detector
	Backlight *backlight.Backlight
	// OnChange is called after each handled transition with the new
	// screensaver state. Used to publish notifications and record
	// power events.
	OnChange func(active bool)
	// WakeKey, when set, is invoked after the screen unblanks so the X
	// session registers activity.
	WakeKey func()
}

// Watcher drives the backlight from screensaver transitions.
type Watcher struct {
	detector  Detector
	backlight *backlight.Backlight
	onChange  func(active bool)
	wakeKey   func()
	stopChan  chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

func NewWatcher(opts WatcherOptions) *Watcher {
	return &Watcher{
		detector:  opts.Detector,
		backlight: opts.Backlight,
		onChange:  opts.OnChange,
		wakeKey:   opts.WakeKey,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the detector and the handling loop.
func (w *Watcher) Start() error {
	if err := w.detector.Start(); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop shuts down the detector and waits for the handling loop.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.detector.Stop()
		close(w.stopChan)
		w.wg.Wait()
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.detector.Events():
			if !ok {
				return
			}
			w.handle(event)
		}
	}
}

// handle applies one transition. Backlight failures are soft: the deck
// still works with a lit panel, and off-device there is no panel at all.
func (w *Watcher) handle(event Event) {
	log.Debug().
		Bool("active", event.Active).
		Str("source", event.Source).
		Msg("screensaver state changed")

	if event.Active {
		if err := w.backlight.Off(); err != nil {
			log.Warn().Err(err).Msg("failed to turn backlight off")
		}
	} else {
		if err := w.backlight.On(); err != nil {
			log.Warn().Err(err).Msg("failed to turn backlight on")
		}
		if w.wakeKey != nil {
			w.wakeKey()
		}
	}

	if w.onChange != nil {
		w.onChange(event.Active)
	}
}
