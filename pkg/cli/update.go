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

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/creativeprojects/go-selfupdate"
)

const updateRepo = "CyberdeckProject/cyberdeck-core"

// handleUpdate replaces the current binary with the latest GitHub
// release, if there is a newer one.
func handleUpdate(ctx context.Context) error {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(updateRepo))
	if err != nil {
		return fmt.Errorf("error checking for updates: %w", err)
	}
	if !found || latest.LessOrEqual(config.AppVersion) {
		_, _ = fmt.Printf("Cyberdeck v%s is up to date.\n", config.AppVersion)
		return nil
	}

	_, _ = fmt.Printf("Updating Cyberdeck v%s to v%s...\n",
		config.AppVersion, latest.Version())

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("error locating current binary: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error applying update: %w", err)
	}

	_, _ = fmt.Printf("Updated to v%s. Restart the service to finish: cyberdeck -service restart\n",
		latest.Version())
	return nil
}
