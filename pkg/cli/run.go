//go:build linux

/*
Cyberdeck Core
Copyright (c) 2025 The Cyberdeck Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Cyberdeck Core.

Cyberdeck Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Cyberdeck Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Cyberdeck Core.  If not, see <http://www.gnu.org/licenses/>.
*/

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/client"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/daemon"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/ui/tui"
	"github.com/rs/zerolog/log"
)

// RunApp connects to the service daemon, spawning one if none is
// running, then runs the interactive status screen until it exits.
func RunApp(cfg *config.Instance) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	exit := make(chan bool, 1)

	stopDaemon, err := daemon.SpawnDaemon(cfg)
	if err != nil {
		return fmt.Errorf("error spawning daemon: %w", err)
	}
	defer stopDaemon()

	app, err := tui.BuildMain(
		cfg,
		func() bool { return client.IsServiceRunning(cfg) },
		filepath.Join(helpers.DataDir(), config.LogFile),
	)
	if err != nil {
		log.Error().Err(err).Msg("error building UI")
		return fmt.Errorf("error building UI: %w", err)
	}

	if err = app.Run(); err != nil {
		log.Error().Err(err).Msg("error running UI")
		return fmt.Errorf("error running UI: %w", err)
	}

	exit <- true

	select {
	case <-sigs:
	case <-exit:
	}

	return nil
}
