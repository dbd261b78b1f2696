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

import "path/filepath"

const (
	// DefaultPaddingSeconds is the silence inserted between meditation tracks.
	DefaultPaddingSeconds = 30
	// DefaultPulseOnSeconds is how long the backlight stays on during a
	// meditation pulse cycle.
	DefaultPulseOnSeconds = 15
	// DefaultPulseOffSeconds is how long the backlight stays off during a
	// meditation pulse cycle.
	DefaultPulseOffSeconds = 30
)

type Audio struct {
	MeditationsDir string `toml:"meditations_dir,omitempty"`
	AlarmSound     string `toml:"alarm_sound,omitempty"`
	ProgramsFile   string `toml:"programs_file,omitempty"`
	PaddingSecs    *int   `toml:"padding_secs,omitempty"`
	PulseOnSecs    *int   `toml:"pulse_on_secs,omitempty"`
	PulseOffSecs   *int   `toml:"pulse_off_secs,omitempty"`
}

// MeditationsDir returns the meditation track library directory. Relative
// paths resolve against dataDir.
func (c *Instance) MeditationsDir(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dir := c.vals.Audio.MeditationsDir
	if dir == "" {
		dir = filepath.Join("audio", "meditations")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(dataDir, dir)
	}
	return dir
}

// AlarmSound returns the session alarm file path. Relative paths resolve
// against dataDir.
func (c *Instance) AlarmSound(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sound := c.vals.Audio.AlarmSound
	if sound == "" {
		sound = filepath.Join("audio", "alarm.mp3")
	}
	if !filepath.IsAbs(sound) {
		sound = filepath.Join(dataDir, sound)
	}
	return sound
}

// ProgramsFile returns the YAML file of named meditation programs.
// Relative paths resolve against dataDir.
func (c *Instance) ProgramsFile(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	file := c.vals.Audio.ProgramsFile
	if file == "" {
		file = filepath.Join("audio", "programs.yaml")
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(dataDir, file)
	}
	return file
}

func (c *Instance) PaddingSeconds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Audio.PaddingSecs == nil {
		return DefaultPaddingSeconds
	}
	return *c.vals.Audio.PaddingSecs
}

func (c *Instance) PulseSeconds() (on, off int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	on = DefaultPulseOnSeconds
	off = DefaultPulseOffSeconds
	if c.vals.Audio.PulseOnSecs != nil {
		on = *c.vals.Audio.PulseOnSecs
	}
	if c.vals.Audio.PulseOffSecs != nil {
		off = *c.vals.Audio.PulseOffSecs
	}
	return on, off
}
