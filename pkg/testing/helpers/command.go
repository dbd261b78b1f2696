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
	"github.com/CyberdeckProject/cyberdeck-core/pkg/testing/mocks"
	"github.com/stretchr/testify/mock"
)

// NewMockCommandExecutor creates a MockCommandExecutor that succeeds by default.
// All Run(), Output(), Start() and StartWithOptions() calls return success
// unless explicitly overridden with On().
//
// Override specific commands in tests that need to verify exact behavior:
//
//	cmd := helpers.NewMockCommandExecutor()
//	// Clear defaults first
//	cmd.ExpectedCalls = nil
//	// Set specific expectations (note: args is []string not variadic in mock)
//	cmd.On("Run", mock.Anything, "xrandr", []string{"--listmonitors"}).Return(nil)
//	cmd.On("Output", mock.Anything, "xrandr", mock.Anything).Return([]byte("output"), nil)
func NewMockCommandExecutor() *mocks.MockCommandExecutor {
	cmd := &mocks.MockCommandExecutor{}
	// Match any command with any arguments - all succeed by default
	cmd.On("Run", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Maybe()
	cmd.On("Output", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return([]byte{}, nil).Maybe()
	cmd.On("Start", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Maybe()
	cmd.On(
		"StartWithOptions", mock.Anything, mock.Anything, mock.AnythingOfType("string"), mock.Anything,
	).Return(nil).Maybe()
	return cmd
}
