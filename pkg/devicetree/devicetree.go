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

// Package devicetree reads board identity and overlay state from the
// flattened device tree the kernel exposes under /proc/device-tree.
package devicetree

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// DefaultRoot is where the kernel mounts the flattened device tree.
const DefaultRoot = "/proc/device-tree"

// modelSubstring identifies any Raspberry Pi board revision in the
// device tree model string, e.g. "Raspberry Pi 4 Model B Rev 1.4".
const modelSubstring = "Raspberry Pi"

// statusOkay is the device tree convention for an enabled node. Nodes
// without a status property are also enabled, but the overlays checked
// here always set one.
const statusOkay = "okay"

// displayEngineNodes are the status properties of the display engine
// nodes enabled by the fkms/kms overlays. Node addresses moved between
// kernel versions, so all known locations are checked.
var displayEngineNodes = []string{
	"soc/firmwarekms@7e600000",
	"soc/v3d@7ec00000",
	"v3dbus/v3d@7ec04000",
}

// Tree reads pseudo-files from a device tree root.
type Tree struct {
	fs   afero.Fs
	root string
}

func New(fs afero.Fs, root string) *Tree {
	return &Tree{fs: fs, root: root}
}

// Default returns a Tree over the real /proc/device-tree.
func Default() *Tree {
	return New(afero.NewOsFs(), DefaultRoot)
}

// readProperty reads a device tree property as a string. Device tree
// string properties are NUL-terminated, so trailing NULs and whitespace
// are trimmed.
func (t *Tree) readProperty(rel string) (string, error) {
	data, err := afero.ReadFile(t.fs, path.Join(t.root, rel))
	if err != nil {
		return "", fmt.Errorf("failed to read device tree property %s: %w", rel, err)
	}
	return strings.TrimSpace(strings.Trim(string(data), "\x00")), nil
}

// Model returns the board model string.
func (t *Tree) Model() (string, error) {
	return t.readProperty("model")
}

// SerialNumber returns the board serial, if the firmware provides one.
func (t *Tree) SerialNumber() (string, error) {
	return t.readProperty("serial-number")
}

// IsRaspberryPi reports whether the board identifies as a Raspberry Pi.
// A missing or unreadable model file means no.
func (t *Tree) IsRaspberryPi() bool {
	model, err := t.Model()
	if err != nil {
		return false
	}
	return strings.Contains(model, modelSubstring)
}

// ActiveDisplayEngine returns the device tree node of the first display
// engine whose status is "okay", or false if none is enabled.
func (t *Tree) ActiveDisplayEngine() (string, bool) {
	for _, node := range displayEngineNodes {
		status, err := t.readProperty(path.Join(node, "status"))
		if err != nil {
			continue
		}
		if strings.Contains(status, statusOkay) {
			return node, true
		}
	}
	return "", false
}

// HasDisplayEngine reports whether any display engine overlay is
// enabled. Without one, X has no accelerated output to configure.
func (t *Tree) HasDisplayEngine() bool {
	_, ok := t.ActiveDisplayEngine()
	return ok
}
