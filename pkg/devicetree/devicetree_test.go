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

package devicetree

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T, files map[string]string) *Tree {
	t.Helper()
	fs := afero.NewMemMapFs()
	for rel, content := range files {
		err := afero.WriteFile(fs, DefaultRoot+"/"+rel, []byte(content), 0o444)
		require.NoError(t, err)
	}
	return New(fs, DefaultRoot)
}

func TestModel_TrimsNULTerminator(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, map[string]string{
		"model": "Raspberry Pi 4 Model B Rev 1.4\x00",
	})

	model, err := tree.Model()
	require.NoError(t, err)
	assert.Equal(t, "Raspberry Pi 4 Model B Rev 1.4", model)
}

func TestIsRaspberryPi(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		model    string
		expected bool
	}{
		{
			name:     "pi 4",
			model:    "Raspberry Pi 4 Model B Rev 1.4\x00",
			expected: true,
		},
		{
			name:     "pi 3",
			model:    "Raspberry Pi 3 Model B Plus Rev 1.3\x00",
			expected: true,
		},
		{
			name:     "other board",
			model:    "Pine64 RockPro64 v2.1\x00",
			expected: false,
		},
		{
			name:     "empty model",
			model:    "\x00",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := newTestTree(t, map[string]string{"model": tt.model})
			assert.Equal(t, tt.expected, tree.IsRaspberryPi())
		})
	}
}

func TestIsRaspberryPi_MissingModelFile(t *testing.T) {
	t.Parallel()

	tree := New(afero.NewMemMapFs(), DefaultRoot)
	assert.False(t, tree.IsRaspberryPi())
}

func TestHasDisplayEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		files    map[string]string
		name     string
		expected bool
	}{
		{
			name: "fkms overlay enabled",
			files: map[string]string{
				"soc/firmwarekms@7e600000/status": "okay\x00",
			},
			expected: true,
		},
		{
			name: "v3d enabled",
			files: map[string]string{
				"soc/v3d@7ec00000/status": "okay\x00",
			},
			expected: true,
		},
		{
			name: "v3dbus node enabled",
			files: map[string]string{
				"v3dbus/v3d@7ec04000/status": "okay\x00",
			},
			expected: true,
		},
		{
			name: "engine disabled",
			files: map[string]string{
				"soc/firmwarekms@7e600000/status": "disabled\x00",
			},
			expected: false,
		},
		{
			name:     "no status files at all",
			files:    map[string]string{},
			expected: false,
		},
		{
			name: "one disabled one enabled",
			files: map[string]string{
				"soc/firmwarekms@7e600000/status": "disabled\x00",
				"v3dbus/v3d@7ec04000/status":      "okay\x00",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := newTestTree(t, tt.files)
			assert.Equal(t, tt.expected, tree.HasDisplayEngine())
		})
	}
}

func TestActiveDisplayEngine_ReportsNode(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, map[string]string{
		"soc/v3d@7ec00000/status": "okay\x00",
	})

	node, ok := tree.ActiveDisplayEngine()
	require.True(t, ok)
	assert.Equal(t, "soc/v3d@7ec00000", node)
}

func TestSerialNumber(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, map[string]string{
		"serial-number": "10000000abcd1234\x00",
	})

	serial, err := tree.SerialNumber()
	require.NoError(t, err)
	assert.Equal(t, "10000000abcd1234", serial)
}
