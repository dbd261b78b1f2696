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

	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
)

// NewTestConfig creates a config instance backed by a temp directory that is
// cleaned up with the test.
func NewTestConfig(t *testing.T) *config.Instance {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	if err != nil {
		t.Fatalf("creating test config: %v", err)
	}
	return cfg
}

// NewTestConfigWithPort creates a test config instance with the API port set,
// for tests that stand up their own server on a known port.
func NewTestConfigWithPort(t *testing.T, port int) *config.Instance {
	t.Helper()

	cfg := NewTestConfig(t)
	cfg.SetAPIPort(port)
	return cfg
}
