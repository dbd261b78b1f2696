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

const (
	// DefaultHDMIOutput is the HDMI output name as reported by xrandr.
	DefaultHDMIOutput = "HDMI-1"
	// DefaultTouchOutput is the touchscreen output name as reported by xrandr.
	DefaultTouchOutput = "DSI-1"
	// DefaultTouchDevice is the touchscreen device name as reported by xinput.
	DefaultTouchDevice = "pointer:Goodix Capacitive TouchScreen"
	// DefaultDelegateScript is sourced after display setup when present.
	DefaultDelegateScript = "/usr/share/tssetup.sh"
)

type Display struct {
	HDMIOutput     string `toml:"hdmi_output,omitempty"`
	TouchOutput    string `toml:"touch_output,omitempty"`
	TouchDevice    string `toml:"touch_device,omitempty"`
	DelegateScript string `toml:"delegate_script,omitempty"`
	LaunchTerminal *bool  `toml:"launch_terminal,omitempty"`
}

func (c *Instance) HDMIOutput() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.HDMIOutput == "" {
		return DefaultHDMIOutput
	}
	return c.vals.Display.HDMIOutput
}

func (c *Instance) TouchOutput() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.TouchOutput == "" {
		return DefaultTouchOutput
	}
	return c.vals.Display.TouchOutput
}

func (c *Instance) TouchDevice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.TouchDevice == "" {
		return DefaultTouchDevice
	}
	return c.vals.Display.TouchDevice
}

// DelegateScript returns the path of the touchscreen setup script sourced
// after a successful display setup. An empty value falls back to the
// default system path.
func (c *Instance) DelegateScript() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.DelegateScript == "" {
		return DefaultDelegateScript
	}
	return c.vals.Display.DelegateScript
}

// LaunchTerminal reports whether a fullscreen terminal should be started on
// the touchscreen after docked setup.
func (c *Instance) LaunchTerminal() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.LaunchTerminal == nil {
		return true
	}
	return *c.vals.Display.LaunchTerminal
}
