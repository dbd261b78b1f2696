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

package display

import (
	"context"
	"fmt"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

const xrandrBin = "xrandr"

// Fixed dual screen geometry: HDMI on top, touchscreen centered below
// it. The touchscreen is primary so new windows land there when docked.
const (
	hdmiLayoutMode  = "1920x1080"
	hdmiLayoutPos   = "0x0"
	touchLayoutMode = "800x480"
	touchLayoutPos  = "512x1080"
	layoutRate      = "60"
)

// XRandr executes display layout commands for a fixed pair of outputs.
type XRandr struct {
	cmd         command.Executor
	hdmiOutput  string
	touchOutput string
}

// NewXRandr creates an xrandr wrapper for the given output names.
func NewXRandr(hdmiOutput, touchOutput string) *XRandr {
	return NewXRandrWithExecutor(hdmiOutput, touchOutput, &command.RealExecutor{})
}

// NewXRandrWithExecutor creates an xrandr wrapper with a custom command
// executor. This is useful for testing.
func NewXRandrWithExecutor(hdmiOutput, touchOutput string, cmd command.Executor) *XRandr {
	return &XRandr{
		cmd:         cmd,
		hdmiOutput:  hdmiOutput,
		touchOutput: touchOutput,
	}
}

// LayoutArgs is the fixed argument list for the dual screen layout.
func (x *XRandr) LayoutArgs() []string {
	return []string{
		"--output", x.hdmiOutput,
		"--mode", hdmiLayoutMode,
		"--rate", layoutRate,
		"--pos", hdmiLayoutPos,
		"--rotate", "normal",
		"--output", x.touchOutput,
		"--mode", touchLayoutMode,
		"--rate", layoutRate,
		"--pos", touchLayoutPos,
		"--rotate", "normal",
		"--primary",
	}
}

// ListMonitors queries the active monitors.
func (x *XRandr) ListMonitors(ctx context.Context) ([]Monitor, error) {
	output, err := x.cmd.Output(ctx, xrandrBin, "--listmonitors")
	if err != nil {
		return nil, fmt.Errorf("failed to list monitors: %w", err)
	}

	monitors := parseMonitors(string(output))
	for _, m := range monitors {
		log.Debug().
			Str("name", m.Name).
			Int("width", m.Width).
			Int("height", m.Height).
			Msg("detected monitor")
	}
	return monitors, nil
}

// Validate runs the layout command in dry-run mode. The layout is only
// feasible when both outputs are connected and support the fixed modes.
func (x *XRandr) Validate(ctx context.Context) error {
	args := append([]string{"--dryrun"}, x.LayoutArgs()...)
	if err := x.cmd.Run(ctx, xrandrBin, args...); err != nil {
		return fmt.Errorf("layout dry-run failed: %w", err)
	}
	return nil
}

// Apply validates the layout with a dry-run and, only if that succeeds,
// applies it for real.
func (x *XRandr) Apply(ctx context.Context) error {
	if err := x.Validate(ctx); err != nil {
		return err
	}

	if err := x.cmd.Run(ctx, xrandrBin, x.LayoutArgs()...); err != nil {
		return fmt.Errorf("failed to apply layout: %w", err)
	}

	log.Info().
		Str("hdmi", x.hdmiOutput).
		Str("touch", x.touchOutput).
		Msg("display layout applied")
	return nil
}
