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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/CyberdeckProject/cyberdeck-core/internal/telemetry"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/cli"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/daemon"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	// Daemon mode logs to stderr as well, so systemd picks it up in
	// the journal.
	daemonMode := *flags.Daemon || *flags.Service == "exec"
	var logWriters []io.Writer
	if daemonMode {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", err)
			telemetry.Flush()
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	svc, err := daemon.NewService(daemon.ServiceArgs{
		Entry: func() (func() error, <-chan struct{}, error) {
			return service.Start(cfg)
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("error creating service")
		return fmt.Errorf("error creating service: %w", err)
	}

	// -daemon is what the systemd unit runs. It behaves exactly like
	// -service exec: a pid file plus the service in the foreground.
	serviceCmd := *flags.Service
	if *flags.Daemon {
		serviceCmd = "exec"
	}
	err = svc.ServiceHandler(&serviceCmd)
	if err != nil {
		return fmt.Errorf("service handler failed: %w", err)
	}

	flags.Post(cfg)

	return cli.RunApp(cfg)
}
