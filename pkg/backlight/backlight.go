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

// Package backlight controls the touchscreen backlight through the
// kernel backlight class. bl_power takes 0 for on and 1 for off
// (FB_BLANK_UNBLANK / FB_BLANK_POWERDOWN).
package backlight

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

const (
	powerOn  = "0\n"
	powerOff = "1\n"
)

// Backlight drives one sysfs bl_power file.
type Backlight struct {
	fs   afero.Fs
	path string
}

// New creates a backlight over the given bl_power path.
func New(fs afero.Fs, path string) *Backlight {
	return &Backlight{fs: fs, path: path}
}

// Default returns a backlight over the real sysfs path.
func Default(path string) *Backlight {
	return New(afero.NewOsFs(), path)
}

// Available reports whether the backlight device exists. It won't on
// development machines or when the DSI panel driver is missing.
func (b *Backlight) Available() bool {
	exists, err := afero.Exists(b.fs, b.path)
	return err == nil && exists
}

// SetPower switches the backlight on or off.
func (b *Backlight) SetPower(on bool) error {
	value := powerOff
	if on {
		value = powerOn
	}
	if err := afero.WriteFile(b.fs, b.path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write backlight power: %w", err)
	}
	return nil
}

// On turns the backlight on.
func (b *Backlight) On() error {
	return b.SetPower(true)
}

// Off turns the backlight off.
func (b *Backlight) Off() error {
	return b.SetPower(false)
}

// IsOn reads the current power state.
func (b *Backlight) IsOn() (bool, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		return false, fmt.Errorf("failed to read backlight power: %w", err)
	}
	return strings.TrimSpace(string(data)) == "0", nil
}
