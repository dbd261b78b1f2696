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

package installer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/testing/helpers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stageRoot creates the system directories doInstall expects under a temp
// root, mirroring a stock Raspberry Pi OS image.
func stageRoot(t *testing.T, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755)) //nolint:gosec // test directories
	}
	return root
}

func TestInstallRequiresRoot(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("cannot test the non-root refusal as root")
	}

	err := Install()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be run as root")
}

func TestUninstallRequiresRoot(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("cannot test the non-root refusal as root")
	}

	err := Uninstall()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be run as root")
}

func TestDoInstall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		setupMock     func(*mocks.MockCommandExecutor)
		name          string
		errorContains string
		dirs          []string
		expectError   bool
	}{
		{
			name: "successful installation",
			dirs: []string{"usr/local/bin", "etc/systemd/system", "etc/xdg/autostart"},
		},
		{
			name:          "binary directory missing",
			dirs:          []string{"etc/systemd/system", "etc/xdg/autostart"},
			expectError:   true,
			errorContains: "binary install directory does not exist",
		},
		{
			name:          "systemd unit directory missing",
			dirs:          []string{"usr/local/bin", "etc/xdg/autostart"},
			expectError:   true,
			errorContains: "systemd unit directory does not exist",
		},
		{
			name:          "autostart directory missing",
			dirs:          []string{"usr/local/bin", "etc/systemd/system"},
			expectError:   true,
			errorContains: "autostart directory does not exist",
		},
		{
			name: "systemctl failures are ignored",
			dirs: []string{"usr/local/bin", "etc/systemd/system", "etc/xdg/autostart"},
			setupMock: func(cmd *mocks.MockCommandExecutor) {
				cmd.ExpectedCalls = nil
				cmd.On("Run", mock.Anything, "systemctl", mock.AnythingOfType("[]string")).
					Return(errors.New("systemctl not found"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := stageRoot(t, tt.dirs...)
			cmd := helpers.NewMockCommandExecutor()
			if tt.setupMock != nil {
				tt.setupMock(cmd)
			}

			err := doInstall(cmd, root)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)

			info, err := os.Stat(filepath.Join(root, binInstallPath))
			require.NoError(t, err, "binary should be installed")
			assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "binary should be executable")

			unit, err := os.ReadFile(filepath.Join(root, systemdUnitPath))
			require.NoError(t, err, "systemd unit should be installed")
			assert.Contains(t, string(unit), "ExecStart=/usr/local/bin/cyberdeck -daemon")

			entry, err := os.ReadFile(filepath.Join(root, autostartPath))
			require.NoError(t, err, "autostart entry should be installed")
			assert.Contains(t, string(entry), "Exec=/usr/local/bin/cyberdeck -session")

			cmd.AssertExpectations(t)
		})
	}
}

func TestDoInstallAlreadyInstalled(t *testing.T) {
	t.Parallel()

	root := stageRoot(t, "usr/local/bin", "etc/systemd/system", "etc/xdg/autostart")

	unitPath := filepath.Join(root, systemdUnitPath)
	entryPath := filepath.Join(root, autostartPath)
	require.NoError(t, os.WriteFile(unitPath, []byte("local edits"), 0o644))  //nolint:gosec // test file
	require.NoError(t, os.WriteFile(entryPath, []byte("local edits"), 0o644)) //nolint:gosec // test file

	// no expectations at all: a systemctl call would fail the mock
	cmd := &mocks.MockCommandExecutor{}

	err := doInstall(cmd, root)
	require.NoError(t, err)

	// existing files are left alone so local edits survive a reinstall
	unit, err := os.ReadFile(unitPath)
	require.NoError(t, err)
	assert.Equal(t, "local edits", string(unit))

	entry, err := os.ReadFile(entryPath)
	require.NoError(t, err)
	assert.Equal(t, "local edits", string(entry))

	cmd.AssertExpectations(t)
}

func TestDoUninstall(t *testing.T) {
	t.Parallel()

	t.Run("stops service and removes files", func(t *testing.T) {
		t.Parallel()

		root := stageRoot(t, "usr/local/bin", "etc/systemd/system", "etc/xdg/autostart")

		binPath := filepath.Join(root, binInstallPath)
		unitPath := filepath.Join(root, systemdUnitPath)
		entryPath := filepath.Join(root, autostartPath)
		require.NoError(t, os.WriteFile(binPath, []byte("test"), 0o755))   //nolint:gosec // test binary
		require.NoError(t, os.WriteFile(unitPath, []byte("test"), 0o644))  //nolint:gosec // test file
		require.NoError(t, os.WriteFile(entryPath, []byte("test"), 0o644)) //nolint:gosec // test file

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Run", mock.Anything, "systemctl", []string{"stop", "cyberdeck"}).Return(nil).Once()
		cmd.On("Run", mock.Anything, "systemctl", []string{"disable", "cyberdeck"}).Return(nil).Once()
		cmd.On("Run", mock.Anything, "systemctl", []string{"daemon-reload"}).Return(nil).Once()

		err := doUninstall(cmd, root)
		require.NoError(t, err)

		for _, path := range []string{binPath, unitPath, entryPath} {
			_, err = os.Stat(path)
			assert.True(t, os.IsNotExist(err), "%s should be removed", path)
		}

		cmd.AssertExpectations(t)
	})

	t.Run("clean system is a no-op", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		cmd := &mocks.MockCommandExecutor{}

		err := doUninstall(cmd, root)
		require.NoError(t, err)

		cmd.AssertExpectations(t)
	})
}
