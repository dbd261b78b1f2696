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

package power

import (
	"sync"
	"testing"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/backlight"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const blPowerPath = "/sys/class/backlight/rpi_backlight/bl_power"

// fakeDetector feeds scripted events to a Watcher.
type fakeDetector struct {
	events   chan Event
	stopOnce sync.Once
	started  bool
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{events: make(chan Event, 10)}
}

func (f *fakeDetector) Events() <-chan Event { return f.events }

func (f *fakeDetector) Start() error {
	f.started = true
	return nil
}

func (f *fakeDetector) Stop() {
	f.stopOnce.Do(func() { close(f.events) })
}

func readBacklight(t *testing.T, fs afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fs, blPowerPath)
	require.NoError(t, err)
	return string(data)
}

func TestWatcher_DrivesBacklight(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, blPowerPath, []byte("0\n"), 0o644))

	detector := newFakeDetector()
	changes := make(chan bool, 10)
	wakes := make(chan struct{}, 10)

	watcher := NewWatcher(WatcherOptions{
		Detector:  detector,
		Backlight: backlight.New(fs, blPowerPath),
		OnChange:  func(active bool) { changes <- active },
		WakeKey:   func() { wakes <- struct{}{} },
	})

	require.NoError(t, watcher.Start())
	assert.True(t, detector.started)

	// Screensaver activates: backlight goes off
	detector.events <- Event{Active: true, Source: SourceDBus}
	select {
	case active := <-changes:
		assert.True(t, active)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change callback")
	}
	assert.Equal(t, "1\n", readBacklight(t, fs))

	// Screensaver deactivates: backlight on, wake key pressed
	detector.events <- Event{Active: false, Source: SourceDBus}
	select {
	case active := <-changes:
		assert.False(t, active)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change callback")
	}
	assert.Equal(t, "0\n", readBacklight(t, fs))

	select {
	case <-wakes:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for wake key")
	}

	watcher.Stop()
}

func TestWatcher_NoWakeKeyConfigured(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs := afero.NewMemMapFs()
	detector := newFakeDetector()
	changes := make(chan bool, 10)

	watcher := NewWatcher(WatcherOptions{
		Detector:  detector,
		Backlight: backlight.New(fs, blPowerPath),
		OnChange:  func(active bool) { changes <- active },
	})

	require.NoError(t, watcher.Start())

	// Unblank without a wake key must not panic
	detector.events <- Event{Active: false, Source: SourceXScreensaver}
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	watcher.Stop()
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	detector := newFakeDetector()
	watcher := NewWatcher(WatcherOptions{
		Detector:  detector,
		Backlight: backlight.New(afero.NewMemMapFs(), blPowerPath),
	})

	require.NoError(t, watcher.Start())
	watcher.Stop()
	watcher.Stop()
}

func TestWatcher_MissingBacklightIsSoftFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Read-only filesystem: every backlight write fails
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	detector := newFakeDetector()
	changes := make(chan bool, 10)

	watcher := NewWatcher(WatcherOptions{
		Detector:  detector,
		Backlight: backlight.New(fs, blPowerPath),
		OnChange:  func(active bool) { changes <- active },
	})

	require.NoError(t, watcher.Start())

	detector.events <- Event{Active: true, Source: SourceDBus}
	select {
	case active := <-changes:
		assert.True(t, active, "change callback still fires when backlight write fails")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	watcher.Stop()
}
