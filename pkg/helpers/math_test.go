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

package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMax(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 9, Max([]int{3, 9, 1}))
	assert.Equal(t, 2432, Max([]int{2432, 800}))
	assert.InEpsilon(t, 1.5, Max([]float64{0.2, 1.5, 0.9}), 0.0001)
	assert.Equal(t, 0, Max([]int{}))
}

func TestMin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Min([]int{3, 9, 1}))
	assert.Equal(t, 800, Min([]int{2432, 800}))
	assert.Equal(t, 0, Min([]int{}))
}

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.InEpsilon(t, 1.0, Clamp(1.7, 0.0, 1.0), 0.0001)
}
