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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/adrg/xdg"
)

// userDirCache caches the result of HasUserDir to avoid repeated filesystem checks
var (
	userDirCache       string
	userDirCacheExists bool
	userDirOnce        sync.Once
)

// HasUserDir checks if a "user" directory exists next to the cyberdeck binary
// and returns true and the absolute path to it. This directory is used as a
// parent for all data directories if it exists, for a portable install.
// The result is cached after the first call for better performance.
// This function is safe for concurrent use.
func HasUserDir() (string, bool) {
	userDirOnce.Do(func() {
		exeDir := ""
		envExe := os.Getenv(config.AppEnv)
		var err error

		if envExe != "" {
			exeDir = envExe
		} else {
			exeDir, err = os.Executable()
			if err != nil {
				userDirCacheExists = false
				return
			}
		}

		parent := filepath.Dir(exeDir)
		userDir := filepath.Join(parent, config.UserDir)

		info, err := os.Stat(userDir)
		if err != nil {
			userDirCacheExists = false
			return
		}
		if !info.IsDir() {
			userDirCacheExists = false
			return
		}

		userDirCache = userDir
		userDirCacheExists = true
	})

	return userDirCache, userDirCacheExists
}

// ConfigDir returns the directory where the config file is stored.
func ConfigDir() string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir returns the directory where persistent data is stored.
func DataDir() string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return filepath.Join(xdg.DataHome, config.AppName)
}

// TempDir returns the directory for logs and other ephemeral files.
func TempDir() string {
	return filepath.Join(os.TempDir(), config.AppName)
}

// EnsureDirectories creates the config, data and temp directories if missing.
func EnsureDirectories() error {
	for _, dir := range []string{ConfigDir(), DataDir(), TempDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
