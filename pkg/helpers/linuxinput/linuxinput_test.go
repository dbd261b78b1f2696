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

//go:build linux

package linuxinput

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyboardRequiresUinput(t *testing.T) {
	t.Parallel()

	if _, err := os.Stat(uinputDev); err == nil {
		t.Skip("uinput device present, creation would succeed")
	}

	_, err := NewKeyboard(DefaultTimeout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create keyboard device")
}

func TestKeyboardDefaults(t *testing.T) {
	t.Parallel()

	kbd := Keyboard{Delay: DefaultTimeout}
	assert.Equal(t, 40*time.Millisecond, kbd.Delay)
	assert.Positive(t, KeyWake)
}
