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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAllow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		allow    []string
		allowRe  []*regexp.Regexp
		expected bool
	}{
		{
			name:     "empty input returns false",
			allow:    []string{".*"},
			allowRe:  []*regexp.Regexp{regexp.MustCompile(".*")},
			input:    "",
			expected: false,
		},
		{
			name:     "nil regex returns false",
			allow:    []string{"test"},
			allowRe:  []*regexp.Regexp{nil},
			input:    "test",
			expected: false,
		},
		{
			name:     "exact match",
			allow:    []string{"test"},
			allowRe:  []*regexp.Regexp{regexp.MustCompile("^test$")},
			input:    "test",
			expected: true,
		},
		{
			name:     "partial match with regex",
			allow:    []string{"test.*"},
			allowRe:  []*regexp.Regexp{regexp.MustCompile("test.*")},
			input:    "test123",
			expected: true,
		},
		{
			name:     "no match",
			allow:    []string{"test"},
			allowRe:  []*regexp.Regexp{regexp.MustCompile("^test$")},
			input:    "different",
			expected: false,
		},
		{
			name:     "multiple patterns second matches",
			allow:    []string{"test", "other"},
			allowRe:  []*regexp.Regexp{regexp.MustCompile("^test$"), regexp.MustCompile("^other.*$")},
			input:    "other456",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := checkAllow(tt.allow, tt.allowRe, tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAPIPort(t *testing.T) {
	t.Parallel()

	t.Run("returns default when nil", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{}}
		assert.Equal(t, DefaultAPIPort, cfg.APIPort())
	})

	t.Run("returns configured port", func(t *testing.T) {
		t.Parallel()

		port := 8080
		cfg := &Instance{vals: Values{Service: Service{APIPort: &port}}}
		assert.Equal(t, 8080, cfg.APIPort())
	})

	t.Run("set overrides default", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{}}
		cfg.SetAPIPort(9000)
		assert.Equal(t, 9000, cfg.APIPort())
	})
}

func TestAPIListen(t *testing.T) {
	t.Parallel()

	t.Run("derives from port when unset", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{}}
		assert.Equal(t, fmt.Sprintf(":%d", DefaultAPIPort), cfg.APIListen())
	})

	t.Run("uses explicit listen address", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{Service: Service{APIListen: "127.0.0.1:7497"}}}
		assert.Equal(t, "127.0.0.1:7497", cfg.APIListen())
	})
}

func TestLoad_PreservesDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, CfgFile)

	defaults := Values{
		ConfigSchema: SchemaVersion,
		Display: Display{
			HDMIOutput:  DefaultHDMIOutput,
			TouchOutput: DefaultTouchOutput,
			TouchDevice: DefaultTouchDevice,
		},
	}

	// Create a minimal TOML file that only has ConfigSchema
	// (simulating a file that was saved without all default fields)
	minimalConfig := fmt.Sprintf("config_schema = %d\n", SchemaVersion)
	err := os.WriteFile(cfgPath, []byte(minimalConfig), 0o600)
	require.NoError(t, err)

	cfg := &Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	err = cfg.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHDMIOutput, cfg.vals.Display.HDMIOutput,
		"Display.HDMIOutput should retain default")
	assert.Equal(t, DefaultTouchDevice, cfg.vals.Display.TouchDevice,
		"Display.TouchDevice should retain default")
	assert.Nil(t, cfg.vals.Service.APIPort,
		"Service.APIPort should be nil (getter returns default)")
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, CfgFile)

	defaults := Values{
		ConfigSchema: SchemaVersion,
		Display: Display{
			HDMIOutput:  DefaultHDMIOutput,
			TouchOutput: DefaultTouchOutput,
		},
	}

	configContent := fmt.Sprintf(`config_schema = %d
debug_logging = true

[display]
hdmi_output = "HDMI-2"
launch_terminal = false

[backlight]
screensaver_watch = false

[service]
api_port = 8080
allow_run = [
  "^/usr/share/tssetup\\.sh$",
]
`, SchemaVersion)

	err := os.WriteFile(cfgPath, []byte(configContent), 0o600)
	require.NoError(t, err)

	cfg := &Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	err = cfg.Load()
	require.NoError(t, err)

	assert.True(t, cfg.vals.DebugLogging, "DebugLogging should be overridden to true")
	assert.Equal(t, "HDMI-2", cfg.HDMIOutput())
	assert.Equal(t, DefaultTouchOutput, cfg.TouchOutput(), "unset field keeps default")
	assert.False(t, cfg.LaunchTerminal())
	assert.False(t, cfg.ScreensaverWatchEnabled())
	assert.Equal(t, 8080, cfg.APIPort())
	assert.True(t, cfg.IsRunAllowed("/usr/share/tssetup.sh"))
	assert.False(t, cfg.IsRunAllowed("/usr/bin/rm"))
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, CfgFile)

	err := os.WriteFile(cfgPath, []byte("config_schema = 999\n"), 0o600)
	require.NoError(t, err)

	cfg := &Instance{
		cfgPath:  cfgPath,
		vals:     BaseDefaults,
		defaults: BaseDefaults,
	}

	err = cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestSave_GeneratesDeviceID(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, CfgFile)

	cfg := &Instance{
		cfgPath:  cfgPath,
		vals:     BaseDefaults,
		defaults: BaseDefaults,
	}

	require.NoError(t, cfg.Save())

	firstID := cfg.DeviceID()
	assert.NotEmpty(t, firstID)

	// A second save must not rotate the id
	require.NoError(t, cfg.Save())
	assert.Equal(t, firstID, cfg.DeviceID())
}

func TestNewConfig_CreatesAndReloads(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewConfig(tempDir, BaseDefaults)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(tempDir, CfgFile))
	assert.NotEmpty(t, cfg.DeviceID())

	// A fresh instance reads the same device id back
	cfg2, err := NewConfig(tempDir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, cfg.DeviceID(), cfg2.DeviceID())
}
