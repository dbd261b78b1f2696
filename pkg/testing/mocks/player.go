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

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockPlayer is a testify mock for audio.Player. It allows testing session
// playback without an audio device.
type MockPlayer struct {
	mock.Mock
}

// Play mocks blocking playback of one file.
func (m *MockPlayer) Play(ctx context.Context, path string) error {
	called := m.Called(ctx, path)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// PlayLoop mocks looped playback until cancellation.
func (m *MockPlayer) PlayLoop(ctx context.Context, path string) error {
	called := m.Called(ctx, path)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// Probe mocks reporting a file's play length.
func (m *MockPlayer) Probe(path string) (time.Duration, error) {
	called := m.Called(path)
	duration, _ := called.Get(0).(time.Duration)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return duration, called.Error(1)
}
