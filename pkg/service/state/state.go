// Cyberdeck Core
// Copyright (c) 2026 The Cyberdeck Project Contributors.
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

package state

import (
	"context"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/notifications"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/display"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/syncutil"
)

// State holds the runtime state of the Cyberdeck service.
//
// LOCKING RULES: The mu mutex protects all mutable fields. To prevent deadlocks:
//   - Never send to channels while holding the lock (notifications, callbacks)
//   - Never call external methods while holding the lock
//   - Pattern: lock → modify state → copy needed data → unlock → send notifications
//
// See SetDeckMode and SetScreensaverActive for examples.
type State struct {
	ctx              context.Context
	ctxCancelFunc    context.CancelFunc
	meditationCancel context.CancelFunc
	Notifications    chan<- models.Notification
	bootUUID         string
	deckMode         display.Mode
	mu               syncutil.RWMutex
	screensaver      bool
	stopService      bool
}

func NewState(bootUUID string) (state *State, notificationCh <-chan models.Notification) {
	// Buffer size of 500 provides headroom for high-volume events (e.g., MediaIndexing)
	// without dropping user-facing notifications (mode changes, session state)
	ns := make(chan models.Notification, 500)
	ctx, ctxCancelFunc := context.WithCancel(context.Background())
	return &State{
		deckMode:      display.ModeUnknown,
		Notifications: ns,
		ctx:           ctx,
		ctxCancelFunc: ctxCancelFunc,
		bootUUID:      bootUUID,
	}, ns
}

// SetDeckMode records the detected mode and tells clients when it
// actually changed.
func (s *State) SetDeckMode(mode display.Mode) {
	s.mu.Lock()

	if s.deckMode == mode {
		s.mu.Unlock()
		return
	}
	s.deckMode = mode

	// Prepare notification payload inside lock, send outside
	payload := models.DeckModeParams{Mode: string(mode)}

	s.mu.Unlock()

	// Send notification outside lock to prevent deadlock
	notifications.DeckMode(s.Notifications, payload)
}

func (s *State) DeckMode() display.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deckMode
}

// SetScreensaverActive records the screensaver state and notifies on
// transitions.
func (s *State) SetScreensaverActive(active bool) {
	s.mu.Lock()

	if s.screensaver == active {
		s.mu.Unlock()
		return
	}
	s.screensaver = active
	payload := models.ScreensaverParams{Active: active}

	s.mu.Unlock()

	notifications.Screensaver(s.Notifications, payload)
}

func (s *State) ScreensaverActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screensaver
}

// SetMeditationCancel stores the cancel func of the session started over
// the API, replacing any stale one.
func (s *State) SetMeditationCancel(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meditationCancel = cancel
}

// TakeMeditationCancel returns the stored cancel func and clears it, so
// exactly one caller gets to stop the session.
func (s *State) TakeMeditationCancel() context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel := s.meditationCancel
	s.meditationCancel = nil
	return cancel
}

func (s *State) StopService() {
	s.mu.Lock()
	s.stopService = true
	s.mu.Unlock()
	s.ctxCancelFunc()
}

func (s *State) ShouldStopService() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopService
}

func (s *State) GetContext() context.Context {
	return s.ctx
}

func (s *State) BootUUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bootUUID
}
