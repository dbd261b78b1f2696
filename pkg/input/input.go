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

// Package input maps touchscreen coordinates onto the touchscreen's
// region of the virtual screen. Without the transform, X scales touch
// events across the whole virtual screen and taps land on the HDMI
// display.
package input

import (
	"context"
	"fmt"
	"strconv"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/display"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

const xinputBin = "xinput"

// transformProperty is the libinput/evdev property xinput sets.
const transformProperty = "Coordinate Transformation Matrix"

// Matrix is a row-major 3x3 coordinate transformation matrix.
type Matrix [9]float64

// Identity leaves touch coordinates untouched.
var Identity = Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}

// TransformMatrix computes the matrix that confines touch input to the
// touchscreen's area of the combined virtual screen.
func TransformMatrix(touch, hdmi display.Monitor) Matrix {
	totalWidth := max(hdmi.Width+hdmi.X, touch.X+touch.Width)
	totalHeight := max(touch.Height+hdmi.Y, touch.Y+touch.Height)
	if totalWidth <= 0 || totalHeight <= 0 {
		return Identity
	}

	return Matrix{
		float64(touch.Width) / float64(totalWidth),
		0,
		float64(touch.X) / float64(totalWidth),
		0,
		float64(touch.Height) / float64(totalHeight),
		float64(touch.Y) / float64(totalHeight),
		0,
		0,
		1,
	}
}

// Args formats the matrix for xinput, one argument per value.
func (m Matrix) Args() []string {
	args := make([]string, 0, len(m))
	for _, v := range m {
		args = append(args, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return args
}

// Touchscreen applies input settings to one xinput pointer device.
type Touchscreen struct {
	cmd    command.Executor
	device string
}

// NewTouchscreen creates a wrapper for the given xinput device name,
// e.g. "pointer:Goodix Capacitive TouchScreen".
func NewTouchscreen(device string) *Touchscreen {
	return NewTouchscreenWithExecutor(device, &command.RealExecutor{})
}

// NewTouchscreenWithExecutor creates a wrapper with a custom command
// executor. This is useful for testing.
func NewTouchscreenWithExecutor(device string, cmd command.Executor) *Touchscreen {
	return &Touchscreen{cmd: cmd, device: device}
}

// ApplyTransform sets the device's coordinate transformation matrix.
func (t *Touchscreen) ApplyTransform(ctx context.Context, m Matrix) error {
	args := append([]string{"set-prop", t.device, "--type=float", transformProperty}, m.Args()...)
	if err := t.cmd.Run(ctx, xinputBin, args...); err != nil {
		return fmt.Errorf("failed to set transform matrix: %w", err)
	}

	log.Debug().
		Str("device", t.device).
		Strs("matrix", m.Args()).
		Msg("touchscreen transform applied")
	return nil
}
