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

// Package display drives the X display layout through xrandr: monitor
// detection, docked/handheld classification, and applying the dual
// screen layout with dry-run validation.
package display

import (
	"regexp"
	"strconv"
)

// Monitor is one active output as reported by xrandr --listmonitors.
type Monitor struct {
	Name   string `json:"name"`
	ID     int    `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// monitorLine matches one monitor entry, e.g.
//
//	 0: +*DSI-1 800/212x480/127+512+1080  DSI-1
//	 1: +HDMI-1 1920/598x1080/336+0+0  HDMI-1
//
// Groups: id, width, height, x, y, name. The /nnn physical dimensions
// are skipped.
var monitorLine = regexp.MustCompile(
	`(?m)^\s+(\d+):\s+\S+\s+(\d+)/\d+x(\d+)/\d+\+(\d+)\+(\d+)\s+(\S+)\s*$`)

// parseMonitors extracts monitors from xrandr --listmonitors output.
func parseMonitors(output string) []Monitor {
	matches := monitorLine.FindAllStringSubmatch(output, -1)
	monitors := make([]Monitor, 0, len(matches))
	for _, m := range matches {
		// Regex groups are all \d+ so Atoi cannot fail here
		id, _ := strconv.Atoi(m[1])
		width, _ := strconv.Atoi(m[2])
		height, _ := strconv.Atoi(m[3])
		x, _ := strconv.Atoi(m[4])
		y, _ := strconv.Atoi(m[5])
		monitors = append(monitors, Monitor{
			ID:     id,
			Name:   m[6],
			Width:  width,
			Height: height,
			X:      x,
			Y:      y,
		})
	}
	return monitors
}

// Find returns the monitor with the given output name.
func Find(monitors []Monitor, name string) (Monitor, bool) {
	for _, m := range monitors {
		if m.Name == name {
			return m, true
		}
	}
	return Monitor{}, false
}

// Mode is the physical configuration the deck is running in.
type Mode string

const (
	// ModeDocked means both the HDMI display and the touchscreen are
	// active.
	ModeDocked Mode = "docked"
	// ModeHandheld means only the touchscreen is active.
	ModeHandheld Mode = "handheld"
	// ModeUnknown means the expected outputs were not found.
	ModeUnknown Mode = "unknown"
)

// Classify determines the deck mode from the active monitor list.
func Classify(monitors []Monitor, hdmiName, touchName string) Mode {
	_, hasHDMI := Find(monitors, hdmiName)
	_, hasTouch := Find(monitors, touchName)

	switch {
	case hasHDMI && hasTouch:
		return ModeDocked
	case hasTouch:
		return ModeHandheld
	default:
		return ModeUnknown
	}
}
