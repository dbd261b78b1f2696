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

// Package deck orchestrates display setup: board identity and overlay
// checks, the fixed dual-screen layout, the touchscreen transform, and
// the handoff to the external touchscreen script.
package deck

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/bootcfg"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/devicetree"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/display"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/command"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/input"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	shBin    = "sh"
	xtermBin = "xterm"
)

// xtermArgs is the terminal launched fullscreen on the touchscreen when
// docked. Geometry is appended at launch from the detected monitor
// position.
var xtermArgs = []string{
	"-fa", "Monospace Regular",
	"-fs", "11",
	"-fullscreen",
	"-bc",
	"-cr", "green",
	"-dc",
	"-bg", "black",
	"-fg", "white",
}

// Deck ties the hardware checks and display tools together.
type Deck struct {
	cfg    *config.Instance
	tree   *devicetree.Tree
	xrandr *display.XRandr
	touch  *input.Touchscreen
	cmd    command.Executor
	fs     afero.Fs
}

// New creates a Deck backed by the real device tree and system commands.
func New(cfg *config.Instance) *Deck {
	return NewWithDeps(cfg, devicetree.Default(), &command.RealExecutor{}, afero.NewOsFs())
}

// NewWithDeps creates a Deck with injected dependencies for testing.
func NewWithDeps(cfg *config.Instance, tree *devicetree.Tree, cmd command.Executor, fs afero.Fs) *Deck {
	return &Deck{
		cfg:    cfg,
		tree:   tree,
		cmd:    cmd,
		fs:     fs,
		xrandr: display.NewXRandrWithExecutor(cfg.HDMIOutput(), cfg.TouchOutput(), cmd),
		touch:  input.NewTouchscreenWithExecutor(cfg.TouchDevice(), cmd),
	}
}

// Setup runs the display setup chain: board identity check, display
// engine overlay check, dry-run validated layout, then the delegate
// script if one is installed. Every failure only skips its own step, so
// Setup never reports an error to the caller.
func (d *Deck) Setup(ctx context.Context) error {
	return d.setup(ctx, false)
}

// SetupRemote is Setup for network-triggered calls. The delegate script
// additionally has to match the allow_run patterns, so a reachable API
// can't be used to source arbitrary configured scripts.
func (d *Deck) SetupRemote(ctx context.Context) error {
	return d.setup(ctx, true)
}

func (d *Deck) setup(ctx context.Context, restrictDelegate bool) error {
	d.applyLayout(ctx)
	d.runDelegate(ctx, restrictDelegate)
	return nil
}

// ErrNotRaspberryPi and ErrNoDisplayEngine report why the layout was
// not applied, so callers can tell a wrong board from a missing overlay.
var (
	ErrNotRaspberryPi  = errors.New("board is not a raspberry pi")
	ErrNoDisplayEngine = errors.New("no display engine overlay active")
)

// ApplyLayout performs the identity and capability checks, then the
// dry-run validated xrandr layout.
func (d *Deck) ApplyLayout(ctx context.Context) error {
	if !d.tree.IsRaspberryPi() {
		return ErrNotRaspberryPi
	}

	node, ok := d.tree.ActiveDisplayEngine()
	if !ok {
		return ErrNoDisplayEngine
	}
	log.Debug().Str("node", node).Msg("display engine overlay active")

	return d.xrandr.Apply(ctx)
}

// applyLayout is ApplyLayout with every failure soft, for the setup
// chain where a skipped layout must not block the delegate script.
func (d *Deck) applyLayout(ctx context.Context) {
	if err := d.ApplyLayout(ctx); err != nil {
		log.Debug().Err(err).Msg("display layout not applied")
	}
}

// runDelegate sources the touchscreen setup script if it exists. The
// script is unversioned and external, so its exit status is ignored.
func (d *Deck) runDelegate(ctx context.Context, restricted bool) {
	script := d.cfg.DelegateScript()
	if script == "" {
		return
	}

	if _, err := d.fs.Stat(script); err != nil {
		log.Debug().Str("script", script).Msg("delegate script not present, skipping")
		return
	}

	if restricted && !d.cfg.IsRunAllowed(script) {
		log.Warn().Str("script", script).Msg("delegate script not in allow_run, skipping")
		return
	}

	log.Info().Str("script", script).Msg("sourcing delegate script")
	if err := d.cmd.Run(ctx, shBin, "-c", ". "+script); err != nil {
		log.Debug().Err(err).Str("script", script).Msg("delegate script failed")
	}
}

// SessionResult describes what SetupSession found and did.
type SessionResult struct {
	Mode     display.Mode
	Monitors []display.Monitor
}

// SetupSession prepares a desktop session: detect the active monitors,
// classify the mode, and when docked confine the touchscreen to its own
// region and launch a terminal on it.
func (d *Deck) SetupSession(ctx context.Context) (SessionResult, error) {
	result := SessionResult{Mode: display.ModeUnknown}

	monitors, err := d.xrandr.ListMonitors(ctx)
	if err != nil {
		return result, err
	}
	result.Monitors = monitors
	result.Mode = display.Classify(monitors, d.cfg.HDMIOutput(), d.cfg.TouchOutput())
	log.Info().Str("mode", string(result.Mode)).Int("monitors", len(monitors)).Msg("session mode detected")

	if result.Mode != display.ModeDocked {
		return result, nil
	}

	touch, _ := display.Find(monitors, d.cfg.TouchOutput())
	hdmi, _ := display.Find(monitors, d.cfg.HDMIOutput())

	matrix := input.TransformMatrix(touch, hdmi)
	if err := d.touch.ApplyTransform(ctx, matrix); err != nil {
		return result, err
	}

	if d.cfg.LaunchTerminal() {
		d.launchTerminal(ctx, touch)
	}

	return result, nil
}

// geometryArg positions a window at the top left of the monitor.
func geometryArg(m display.Monitor) string {
	return fmt.Sprintf("+%d+%d", m.X, m.Y)
}

// launchTerminal starts a fullscreen xterm positioned on the
// touchscreen. Fire and forget; the terminal outlives us.
func (d *Deck) launchTerminal(ctx context.Context, touch display.Monitor) {
	args := make([]string, 0, len(xtermArgs)+2)
	args = append(args, xtermArgs...)
	args = append(args, "-geometry", geometryArg(touch))

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	opts := command.StartOptions{Dir: home}
	if err := d.cmd.StartWithOptions(ctx, opts, xtermBin, args...); err != nil {
		log.Warn().Err(err).Msg("failed to launch terminal on touchscreen")
		return
	}
	log.Info().Str("geometry", geometryArg(touch)).Msg("terminal launched on touchscreen")
}

// Status reports the board and display state for the status API.
type Status struct {
	Model         string            `json:"model"`
	DisplayEngine string            `json:"displayEngine"`
	Overlay       string            `json:"overlay"`
	Mode          display.Mode      `json:"mode"`
	Monitors      []display.Monitor `json:"monitors"`
	RaspberryPi   bool              `json:"raspberryPi"`
	EngineActive  bool              `json:"engineActive"`
}

// Status gathers the current board identity, overlay diagnosis and
// monitor layout. Everything is best-effort; missing pieces come back
// zero-valued.
func (d *Deck) Status(ctx context.Context) Status {
	status := Status{Mode: display.ModeUnknown}

	model, err := d.tree.Model()
	if err != nil {
		log.Debug().Err(err).Msg("device tree model not readable")
	}
	status.Model = model
	status.RaspberryPi = d.tree.IsRaspberryPi()
	status.DisplayEngine, status.EngineActive = d.tree.ActiveDisplayEngine()

	if boot, err := bootcfg.Load(d.fs); err == nil {
		if overlay, ok := boot.DisplayOverlay(); ok {
			status.Overlay = overlay
		}
	}

	monitors, err := d.xrandr.ListMonitors(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("monitor detection failed")
		return status
	}
	status.Monitors = monitors
	status.Mode = display.Classify(monitors, d.cfg.HDMIOutput(), d.cfg.TouchOutput())

	return status
}
