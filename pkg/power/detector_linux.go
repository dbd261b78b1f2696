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

//go:build linux

package power

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	screensaverInterface = "org.freedesktop.ScreenSaver"
	activeChangedMember  = "ActiveChanged"
	activeChangedSignal  = screensaverInterface + "." + activeChangedMember

	// busProbeTimeout bounds the availability check at startup.
	busProbeTimeout = 3 * time.Second
)

// NewDetector picks the best available screensaver detector: the
// org.freedesktop.ScreenSaver session bus interface when a desktop
// environment provides it, otherwise xscreensaver-command -watch.
func NewDetector() Detector {
	if isScreenSaverBusAvailable() {
		log.Debug().Msg("using D-Bus for screensaver detection")
		return &dbusDetector{
			events:   make(chan Event, 10),
			stopChan: make(chan struct{}),
		}
	}

	log.Debug().Msg("D-Bus screensaver unavailable, using xscreensaver fallback")
	return newXScreensaverDetector()
}

// isScreenSaverBusAvailable checks for a session bus that exports the
// screensaver service.
func isScreenSaverBusAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), busProbeTimeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		// A private connection can be safely closed without affecting
		// the shared connection used by Start()
		conn, err := dbus.SessionBusPrivate()
		if err != nil {
			done <- false
			return
		}
		defer func() { _ = conn.Close() }()

		// Auth must be called after SessionBusPrivate
		if err := conn.Auth(nil); err != nil {
			done <- false
			return
		}

		// Hello must be called after Auth to complete the connection setup
		if err := conn.Hello(); err != nil {
			done <- false
			return
		}

		obj := conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus")
		call := obj.CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0)
		if call.Err != nil {
			done <- false
			return
		}

		var names []string
		if err := call.Store(&names); err != nil {
			done <- false
			return
		}

		for _, name := range names {
			if name == screensaverInterface {
				done <- true
				return
			}
		}
		done <- false
	}()

	select {
	case available := <-done:
		return available
	case <-ctx.Done():
		return false
	}
}

// dbusDetector listens for ActiveChanged on the session bus.
type dbusDetector struct {
	conn     *dbus.Conn
	events   chan Event
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func (d *dbusDetector) Events() <-chan Event {
	return d.events
}

func (d *dbusDetector) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session D-Bus: %w", err)
	}
	d.conn = conn

	// No object path match: desktops export the signal under different
	// paths (/org/freedesktop/ScreenSaver, /ScreenSaver)
	if err := d.conn.AddMatchSignal(
		dbus.WithMatchInterface(screensaverInterface),
		dbus.WithMatchMember(activeChangedMember),
	); err != nil {
		return fmt.Errorf("failed to add match for ActiveChanged: %w", err)
	}

	signalChan := make(chan *dbus.Signal, 10)
	d.conn.Signal(signalChan)

	d.wg.Add(1)
	go d.listenForSignals(signalChan)

	return nil
}

func (d *dbusDetector) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
		d.wg.Wait()
		if d.conn != nil {
			_ = d.conn.Close()
		}
		close(d.events)
	})
}

func (d *dbusDetector) listenForSignals(signalChan chan *dbus.Signal) {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopChan:
			return
		case signal := <-signalChan:
			if signal == nil {
				return
			}
			if signal.Name != activeChangedSignal {
				continue
			}

			active, ok := parseActiveChanged(signal.Body)
			if !ok {
				continue
			}

			select {
			case d.events <- Event{Active: active, Source: SourceDBus}:
			case <-d.stopChan:
				return
			}
		}
	}
}

// parseActiveChanged extracts the boolean from an ActiveChanged body.
func parseActiveChanged(body []any) (active, ok bool) {
	if len(body) < 1 {
		return false, false
	}
	active, ok = body[0].(bool)
	return active, ok
}

// xscreensaverDetector parses the line protocol of
// xscreensaver-command -watch.
type xscreensaverDetector struct {
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	events   chan Event
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newXScreensaverDetector() *xscreensaverDetector {
	return &xscreensaverDetector{
		events:   make(chan Event, 10),
		stopChan: make(chan struct{}),
	}
}

func (d *xscreensaverDetector) Events() <-chan Event {
	return d.events
}

// Start spawns the watch process. exec is used directly rather than the
// command.Executor abstraction because the watcher reads a long-lived
// stdout pipe, which the executor interface does not expose.
func (d *xscreensaverDetector) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	cmd := exec.CommandContext(ctx, "xscreensaver-command", "-watch")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open xscreensaver-command stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start xscreensaver-command: %w", err)
	}
	d.cmd = cmd

	d.wg.Add(1)
	go d.watchOutput(stdout)

	return nil
}

func (d *xscreensaverDetector) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
		if d.cancel != nil {
			// Kills the watch process, which ends the scanner loop
			d.cancel()
		}
		d.wg.Wait()
		close(d.events)
	})
}

func (d *xscreensaverDetector) watchOutput(stdout io.Reader) {
	defer d.wg.Done()
	defer func() {
		if d.cmd != nil {
			_ = d.cmd.Wait()
		}
	}()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		active, ok := parseWatchLine(scanner.Text())
		if !ok {
			continue
		}

		select {
		case d.events <- Event{Active: active, Source: SourceXScreensaver}:
		case <-d.stopChan:
			return
		}
	}
}

// parseWatchLine maps one line of xscreensaver-command -watch output to
// a screensaver state. Lines look like "BLANK Fri Nov  5 01:57:22 2021"
// or "RUN 340".
func parseWatchLine(line string) (active, ok bool) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, false
	}

	switch fields[0] {
	case "unblank":
		return false, true
	case "blank", "lock", "run":
		return true, true
	default:
		return false, false
	}
}
