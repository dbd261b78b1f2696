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

package methods

import (
	"testing"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models/requests"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/meditate"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/state"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeditateStartParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		check     func(t *testing.T, params models.MeditateStartParams)
		name      string
		params    string
		wantError bool
	}{
		{
			name:   "no params",
			params: "",
			check: func(t *testing.T, params models.MeditateStartParams) {
				assert.Nil(t, params.Duration)
				assert.Nil(t, params.Track)
				assert.Nil(t, params.Program)
			},
		},
		{
			name:   "duration as number",
			params: `{"duration":1200}`,
			check: func(t *testing.T, params models.MeditateStartParams) {
				require.NotNil(t, params.Duration)
				assert.Equal(t, 1200, *params.Duration)
			},
		},
		{
			name:   "duration as string",
			params: `{"duration":"900"}`,
			check: func(t *testing.T, params models.MeditateStartParams) {
				require.NotNil(t, params.Duration)
				assert.Equal(t, 900, *params.Duration)
			},
		},
		{
			name:   "track selects one recording",
			params: `{"track":"rainstorm"}`,
			check: func(t *testing.T, params models.MeditateStartParams) {
				require.NotNil(t, params.Track)
				assert.Equal(t, "rainstorm", *params.Track)
			},
		},
		{
			name:   "program selects a sequence",
			params: `{"program":"morning"}`,
			check: func(t *testing.T, params models.MeditateStartParams) {
				require.NotNil(t, params.Program)
				assert.Equal(t, "morning", *params.Program)
			},
		},
		{
			name:      "invalid json",
			params:    `nope`,
			wantError: true,
		},
		{
			name:      "unknown field",
			params:    `{"volume":11}`,
			wantError: true,
		},
		{
			name:   "zero duration means unset",
			params: `{"duration":0}`,
			check: func(t *testing.T, params models.MeditateStartParams) {
				require.NotNil(t, params.Duration)
				assert.Equal(t, 0, *params.Duration)
			},
		},
		{
			name:      "duration over a day",
			params:    `{"duration":100000}`,
			wantError: true,
		},
		{
			name:      "track with path separator",
			params:    `{"track":"../../etc/passwd"}`,
			wantError: true,
		},
		{
			name:      "track and program together",
			params:    `{"track":"rainstorm","program":"morning"}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params, err := parseMeditateStartParams([]byte(tt.params))
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, params)
			}
		})
	}
}

func TestHandleMeditateStatus_Idle(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	runner := meditate.NewRunner(cfg, nil, &mocks.MockPlayer{}, nil, nil)

	appState, _ := state.NewState("test-boot-uuid")
	env := requests.RequestEnv{
		Config:   cfg,
		State:    appState,
		Meditate: runner,
	}

	result, err := HandleMeditateStatus(env)
	require.NoError(t, err)

	resp, ok := result.(models.MeditationStatusResponse)
	require.True(t, ok, "result should be MeditationStatusResponse")
	assert.False(t, resp.Running)
	assert.False(t, resp.Alarming)
	assert.Equal(t, 0, resp.PlayedSecs)
}

func TestHandleMeditateStart_NoRunner(t *testing.T) {
	t.Parallel()

	appState, _ := state.NewState("test-boot-uuid")
	env := requests.RequestEnv{
		Config: newTestConfig(t),
		State:  appState,
	}

	_, err := HandleMeditateStart(env)
	require.EqualError(t, err, "meditation not available")
}
