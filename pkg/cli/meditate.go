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

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/audio"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/backlight"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database/sessiondb"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/meditate"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
)

// handleMeditate runs a meditation session in this process, independent of
// the service daemon. The session database is shared through WAL mode.
func handleMeditate(cfg *config.Instance, opts meditate.Options) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		cancel()
	}()

	db, err := sessiondb.OpenSessionDB(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error opening session database")
		_, _ = fmt.Fprintf(os.Stderr, "Error opening session database: %v\n", err)
		os.Exit(1)
	}
	if err := db.MigrateUp(); err != nil {
		log.Error().Err(err).Msg("error migrating session database")
		_, _ = fmt.Fprintf(os.Stderr, "Error migrating session database: %v\n", err)
		_ = db.Close()
		os.Exit(1)
	}

	runner := meditate.NewRunner(
		cfg, db, audio.NewMalgoPlayer(),
		backlight.Default(cfg.BacklightPath()), nil,
	)

	screen, scrErr := tcell.NewScreen()
	if scrErr == nil {
		scrErr = screen.Init()
	}
	if scrErr != nil {
		// no terminal is fine, the session just runs without visuals
		log.Debug().Err(scrErr).Msg("no usable screen, running headless")
		screen = nil
	}
	if screen != nil {
		runner.SetScreen(screen)
		go watchScreenEvents(screen, runner, cancel)
	}

	runErr := runner.Run(ctx, opts)
	cancel()
	if screen != nil {
		screen.Fini()
	}

	switch {
	case runErr == nil:
		_, _ = fmt.Println("Session complete.")
		_ = db.Close()
		os.Exit(0)
	case errors.Is(runErr, context.Canceled):
		_, _ = fmt.Println("Session stopped.")
		_ = db.Close()
		os.Exit(0)
	default:
		log.Error().Err(runErr).Msg("meditation session failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		_ = db.Close()
		os.Exit(1)
	}
}

// watchScreenEvents cancels the session on q, escape or ctrl-c. Once the
// alarm is ringing any key dismisses it. The screen is in raw mode, so
// ctrl-c arrives here as a key event rather than a signal.
func watchScreenEvents(screen tcell.Screen, runner *meditate.Runner, cancel context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if runner.Status().Alarming {
				cancel()
				return
			}
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				cancel()
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}
