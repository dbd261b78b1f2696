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

// Package bootcfg is a read-only parser for the Raspberry Pi firmware
// config.txt. It reports which dtoverlay lines are configured so status
// output can explain why a display engine is missing from the live
// device tree. It never writes boot configuration.
package bootcfg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// Display engine overlays. The -pi4 suffixed variants used by older
// firmware are matched by prefix.
const (
	OverlayKMS  = "vc4-kms-v3d"
	OverlayFKMS = "vc4-fkms-v3d"
)

// DefaultPaths are tried in order. Bookworm moved config.txt under
// /boot/firmware with a compatibility symlink at the old location.
var DefaultPaths = []string{
	"/boot/firmware/config.txt",
	"/boot/config.txt",
}

var ErrNotFound = errors.New("no boot config file found")

// Config holds the parsed overlay list from one config.txt.
type Config struct {
	path     string
	overlays []string
}

// Load reads the first existing config file from paths, or DefaultPaths
// when none are given.
func Load(fs afero.Fs, paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	for _, path := range paths {
		exists, err := afero.Exists(fs, path)
		if err != nil || !exists {
			continue
		}

		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read boot config %s: %w", path, err)
		}

		overlays, err := parseOverlays(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse boot config %s: %w", path, err)
		}

		return &Config{path: path, overlays: overlays}, nil
	}

	return nil, ErrNotFound
}

// parseOverlays collects every dtoverlay value across all conditional
// sections ([all], [pi4], ...). dtoverlay repeats, so shadowed keys are
// enabled, and a value's overlay parameters after the first comma are
// kept as written.
func parseOverlays(data []byte) ([]string, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:             true,
		SkipUnrecognizableLines:  true,
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load ini: %w", err)
	}

	var overlays []string
	for _, section := range file.Sections() {
		if !section.HasKey("dtoverlay") {
			continue
		}
		overlays = append(overlays, section.Key("dtoverlay").ValueWithShadows()...)
	}
	return overlays, nil
}

// Path returns the config file that was read.
func (c *Config) Path() string {
	return c.path
}

// Overlays returns every configured dtoverlay value, parameters included.
func (c *Config) Overlays() []string {
	return c.overlays
}

// HasOverlay reports whether an overlay with the given base name is
// configured, ignoring any parameters after the name.
func (c *Config) HasOverlay(name string) bool {
	for _, overlay := range c.overlays {
		if overlayBase(overlay) == name {
			return true
		}
	}
	return false
}

// DisplayOverlay returns the first configured vc4 display overlay, or
// false if config.txt enables none.
func (c *Config) DisplayOverlay() (string, bool) {
	for _, overlay := range c.overlays {
		base := overlayBase(overlay)
		if strings.HasPrefix(base, OverlayKMS) || strings.HasPrefix(base, OverlayFKMS) {
			return base, true
		}
	}
	return "", false
}

func overlayBase(overlay string) string {
	base, _, _ := strings.Cut(overlay, ",")
	return strings.TrimSpace(base)
}
