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

package input

import (
	"context"
	"errors"
	"testing"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/display"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransformMatrix_DockedGeometry(t *testing.T) {
	t.Parallel()

	// Touchscreen centered below a 1920x1080 HDMI display
	touch := display.Monitor{Name: "DSI-1", Width: 800, Height: 480, X: 512, Y: 1080}
	hdmi := display.Monitor{Name: "HDMI-1", Width: 1920, Height: 1080, X: 0, Y: 0}

	m := TransformMatrix(touch, hdmi)

	// Values verified against a known working configuration
	assert.InDelta(t, 0.416666666666667, m[0], 1e-12)
	assert.InDelta(t, 0.0, m[1], 1e-12)
	assert.InDelta(t, 0.266666666666667, m[2], 1e-12)
	assert.InDelta(t, 0.0, m[3], 1e-12)
	assert.InDelta(t, 0.307692307692308, m[4], 1e-12)
	assert.InDelta(t, 0.692307692307692, m[5], 1e-12)
	assert.InDelta(t, 0.0, m[6], 1e-12)
	assert.InDelta(t, 0.0, m[7], 1e-12)
	assert.InDelta(t, 1.0, m[8], 1e-12)
}

func TestTransformMatrix_DegenerateGeometry(t *testing.T) {
	t.Parallel()

	m := TransformMatrix(display.Monitor{}, display.Monitor{})
	assert.Equal(t, Identity, m)
}

func TestMatrixArgs(t *testing.T) {
	t.Parallel()

	args := Identity.Args()
	assert.Equal(t, []string{"1", "0", "0", "0", "1", "0", "0", "0", "1"}, args)
}

func TestApplyTransform(t *testing.T) {
	t.Parallel()

	expected := []string{
		"set-prop", "pointer:Goodix Capacitive TouchScreen",
		"--type=float", "Coordinate Transformation Matrix",
		"1", "0", "0", "0", "1", "0", "0", "0", "1",
	}

	mockCmd := &mocks.MockCommandExecutor{}
	mockCmd.On("Run", mock.Anything, "xinput", expected).Return(nil).Once()

	ts := NewTouchscreenWithExecutor("pointer:Goodix Capacitive TouchScreen", mockCmd)

	err := ts.ApplyTransform(context.Background(), Identity)
	require.NoError(t, err)
	mockCmd.AssertExpectations(t)
}

func TestApplyTransform_CommandError(t *testing.T) {
	t.Parallel()

	mockCmd := &mocks.MockCommandExecutor{}
	mockCmd.On("Run", mock.Anything, "xinput", mock.Anything).
		Return(errors.New("unable to find device"))

	ts := NewTouchscreenWithExecutor("pointer:Goodix Capacitive TouchScreen", mockCmd)

	err := ts.ApplyTransform(context.Background(), Identity)
	require.Error(t, err)
}
