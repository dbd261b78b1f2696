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
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/internal/telemetry"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/client"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/banner"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/deck"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/installer"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/meditate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Flags struct {
	Setup     *bool
	Session   *bool
	Daemon    *bool
	Service   *string
	Banner    *bool
	Status    *bool
	Meditate  *bool
	Duration  *int
	Track     *string
	Program   *string
	Export    *bool
	Format    *string
	Table     *string
	API       *string
	Install   *bool
	Uninstall *bool
	Update    *bool
	Version   *bool
}

// SetupFlags defines all CLI flags. Add any custom flags before calling Pre.
func SetupFlags() *Flags {
	return &Flags{
		Setup: flag.Bool(
			"setup",
			false,
			"run the display setup chain and exit",
		),
		Session: flag.Bool(
			"session",
			false,
			"configure displays and touch input for the desktop session",
		),
		Daemon: flag.Bool(
			"daemon",
			false,
			"run the cyberdeck service in the foreground",
		),
		Service: flag.String(
			"service",
			"",
			"manage the cyberdeck service (start|stop|restart|status)",
		),
		Banner: flag.Bool(
			"banner",
			false,
			"print the login banner",
		),
		Status: flag.Bool(
			"status",
			false,
			"print deck and service status",
		),
		Meditate: flag.Bool(
			"meditate",
			false,
			"play a meditation session",
		),
		Duration: flag.Int(
			"duration",
			0,
			"meditation session length in seconds (default 1 hour)",
		),
		Track: flag.String(
			"track",
			"",
			"meditation track name, fuzzy matched",
		),
		Program: flag.String(
			"program",
			"",
			"meditation program name",
		),
		Export: flag.Bool(
			"export",
			false,
			"export session history to stdout",
		),
		Format: flag.String(
			"format",
			"csv",
			"export format (csv|json)",
		),
		Table: flag.String(
			"table",
			"sessions",
			"export table (sessions|power)",
		),
		API: flag.String(
			"api",
			"",
			"send method and params to API and print response",
		),
		Install: flag.Bool(
			"install",
			false,
			"install the binary, systemd unit and session autostart entry",
		),
		Uninstall: flag.Bool(
			"uninstall",
			false,
			"remove the binary, systemd unit and session autostart entry",
		),
		Update: flag.Bool(
			"update",
			false,
			"update cyberdeck to the latest release",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	switch {
	case *f.Version:
		_, _ = fmt.Printf("Cyberdeck v%s (%s/%s)\n",
			config.AppVersion, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	case *f.Install:
		// CLIInstall prints its own errors
		if err := installer.CLIInstall(); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	case *f.Uninstall:
		if err := installer.CLIUninstall(); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	case *f.Update:
		if err := handleUpdate(context.Background()); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error updating: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
}

// Post actions all remaining flags that require the environment to be
// set up. Logging is allowed.
func (f *Flags) Post(cfg *config.Instance) {
	switch {
	case *f.Setup:
		// exit 0 no matter what happens, so a broken helper can never
		// block the login chain this runs in
		_ = deck.New(cfg).Setup(context.Background())
		os.Exit(0)
	case *f.Session:
		result, err := deck.New(cfg).SetupSession(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("error setting up session")
			_, _ = fmt.Fprintf(os.Stderr, "Error setting up session: %v\n", err)
			os.Exit(1)
		}
		log.Info().Str("mode", string(result.Mode)).Msg("session setup complete")
		os.Exit(0)
	case *f.Banner:
		handleBanner(cfg)
	case *f.Status:
		handleStatus(cfg)
	case *f.Meditate:
		handleMeditate(cfg, meditate.Options{
			Track:    *f.Track,
			Program:  *f.Program,
			Duration: time.Duration(*f.Duration) * time.Second,
		})
	case *f.Export:
		handleExport(*f.Table, *f.Format)
	case isFlagPassed("api"):
		if *f.API == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: api flag requires a value\n")
			os.Exit(1)
		}

		ps := strings.SplitN(*f.API, ":", 2)
		method := ps[0]
		params := ""
		if len(ps) > 1 {
			params = ps[1]
		}

		resp, err := client.LocalClient(context.Background(), cfg, method, params)
		if err != nil {
			log.Error().Err(err).Msg("error calling API")
			_, _ = fmt.Fprintf(os.Stderr, "Error calling API: %v\n", err)
			os.Exit(1)
		}

		_, _ = fmt.Println(resp)
		os.Exit(0)
	}
}

func handleBanner(cfg *config.Instance) {
	ctx := context.Background()
	status := deck.New(cfg).Status(ctx)
	stats := banner.Collect(ctx, afero.NewOsFs(), cfg, status.Mode, status.Monitors)
	if err := banner.Render(os.Stdout, stats); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error rendering banner: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func handleStatus(cfg *config.Instance) {
	ctx := context.Background()
	status := deck.New(cfg).Status(ctx)
	writeStatus(os.Stdout, status, client.IsServiceRunning(cfg), cfg.APIPort())
	os.Exit(0)
}

func writeStatus(w io.Writer, status deck.Status, running bool, port int) {
	model := status.Model
	if model == "" {
		model = "unknown"
	}
	_, _ = fmt.Fprintf(w, "Model:    %s\n", model)

	engine := "none"
	if status.DisplayEngine != "" {
		engine = status.DisplayEngine
		if !status.EngineActive {
			engine += " (inactive)"
		}
	}
	_, _ = fmt.Fprintf(w, "Engine:   %s\n", engine)

	if status.Overlay != "" {
		_, _ = fmt.Fprintf(w, "Overlay:  %s\n", status.Overlay)
	}

	_, _ = fmt.Fprintf(w, "Mode:     %s\n", status.Mode)
	for _, m := range status.Monitors {
		_, _ = fmt.Fprintf(w, "Monitor:  %s %dx%d+%d+%d\n",
			m.Name, m.Width, m.Height, m.X, m.Y)
	}

	if running {
		_, _ = fmt.Fprintf(w, "Service:  running (port %d)\n", port)
	} else {
		_, _ = fmt.Fprintln(w, "Service:  stopped")
	}
}

// Setup initializes the user config and logging. Returns a user config object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	// Ensure directories exist before logging initialization
	err := helpers.EnsureDirectories()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
		os.Exit(1)
	}

	err = helpers.InitLogging(writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.IsDebugLoggingEnabled() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize error reporting (opt-in)
	if err := telemetry.Init(
		cfg.ErrorReporting(),
		cfg.DeviceID(),
		config.AppVersion,
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
