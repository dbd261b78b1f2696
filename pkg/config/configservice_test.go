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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enabled  *bool
		name     string
		expected bool
	}{
		{
			name:     "default is enabled",
			enabled:  nil,
			expected: true,
		},
		{
			name:     "explicitly enabled",
			enabled:  boolPtr(true),
			expected: true,
		},
		{
			name:     "explicitly disabled",
			enabled:  boolPtr(false),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Instance{vals: Values{
				Service: Service{Discovery: Discovery{Enabled: tt.enabled}},
			}}
			assert.Equal(t, tt.expected, cfg.DiscoveryEnabled())
		})
	}
}

func TestDiscoveryInstanceName(t *testing.T) {
	t.Parallel()

	t.Run("empty falls back to app name", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{}}
		assert.Equal(t, AppName, cfg.DiscoveryInstanceName())
	})

	t.Run("configured name wins", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{
			Service: Service{Discovery: Discovery{InstanceName: "bench-deck"}},
		}}
		assert.Equal(t, "bench-deck", cfg.DiscoveryInstanceName())
	})
}

func TestGetMQTTPublishers(t *testing.T) {
	t.Parallel()

	t.Run("empty by default", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{}}
		assert.Empty(t, cfg.GetMQTTPublishers())
	})

	t.Run("returns configured publishers", func(t *testing.T) {
		t.Parallel()

		cfg := &Instance{vals: Values{
			Service: Service{Publishers: Publishers{MQTT: []MQTTPublisher{
				{Broker: "mqtt://10.0.0.5:1883", Topic: "cyberdeck/events"},
			}}},
		}}

		pubs := cfg.GetMQTTPublishers()
		assert.Len(t, pubs, 1)
		assert.Equal(t, "mqtt://10.0.0.5:1883", pubs[0].Broker)
		assert.Equal(t, "cyberdeck/events", pubs[0].Topic)
	})
}

func boolPtr(b bool) *bool {
	return &b
}
