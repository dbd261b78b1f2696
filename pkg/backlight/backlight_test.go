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

package backlight

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blPowerPath = "/sys/class/backlight/rpi_backlight/bl_power"

func TestSetPower(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	bl := New(fs, blPowerPath)

	require.NoError(t, bl.Off())
	data, err := afero.ReadFile(fs, blPowerPath)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(data))

	require.NoError(t, bl.On())
	data, err = afero.ReadFile(fs, blPowerPath)
	require.NoError(t, err)
	assert.Equal(t, "0\n", string(data))
}

func TestIsOn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{name: "unblank", content: "0\n", expected: true},
		{name: "powerdown", content: "1\n", expected: false},
		{name: "deeper powerdown state", content: "4\n", expected: false},
		{name: "no trailing newline", content: "0", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, blPowerPath, []byte(tt.content), 0o644))

			on, err := New(fs, blPowerPath).IsOn()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, on)
		})
	}
}

func TestIsOn_MissingDevice(t *testing.T) {
	t.Parallel()

	_, err := New(afero.NewMemMapFs(), blPowerPath).IsOn()
	require.Error(t, err)
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	bl := New(fs, blPowerPath)
	assert.False(t, bl.Available())

	require.NoError(t, afero.WriteFile(fs, blPowerPath, []byte("0\n"), 0o644))
	assert.True(t, bl.Available())
}
