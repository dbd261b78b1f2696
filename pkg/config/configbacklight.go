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

package config

// DefaultBacklightPath is the sysfs power switch of the official Pi
// touchscreen backlight.
const DefaultBacklightPath = "/sys/class/backlight/rpi_backlight/bl_power"

type Backlight struct {
	SysfsPath        string `toml:"sysfs_path,omitempty"`
	ScreensaverWatch *bool  `toml:"screensaver_watch,omitempty"`
	WakeKey          *bool  `toml:"wake_key,omitempty"`
}

func (c *Instance) BacklightPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Backlight.SysfsPath == "" {
		return DefaultBacklightPath
	}
	return c.vals.Backlight.SysfsPath
}

// ScreensaverWatchEnabled reports whether the service should track
// screensaver state and switch the backlight with it.
func (c *Instance) ScreensaverWatchEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Backlight.ScreensaverWatch == nil {
		return true
	}
	return *c.vals.Backlight.ScreensaverWatch
}

// WakeKeyEnabled reports whether a virtual key press should be injected on
// screensaver unblank. Off by default because it needs /dev/uinput access.
func (c *Instance) WakeKeyEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Backlight.WakeKey == nil {
		return false
	}
	return *c.vals.Backlight.WakeKey
}

func (c *Instance) SetScreensaverWatch(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Backlight.ScreensaverWatch = &enabled
}

func (c *Instance) SetWakeKey(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Backlight.WakeKey = &enabled
}
