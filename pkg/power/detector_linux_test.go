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

//go:build linux

package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWatchLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		line       string
		wantActive bool
		wantOK     bool
	}{
		{
			name:       "blank activates",
			line:       "BLANK Fri Nov  5 01:57:22 2021",
			wantActive: true,
			wantOK:     true,
		},
		{
			name:       "lock activates",
			line:       "LOCK Fri Nov  5 01:57:30 2021",
			wantActive: true,
			wantOK:     true,
		},
		{
			name:       "run activates",
			line:       "RUN 340",
			wantActive: true,
			wantOK:     true,
		},
		{
			name:       "unblank deactivates",
			line:       "UNBLANK Fri Nov  5 02:05:12 2021",
			wantActive: false,
			wantOK:     true,
		},
		{
			name:   "empty line ignored",
			line:   "",
			wantOK: false,
		},
		{
			name:   "whitespace only ignored",
			line:   "   ",
			wantOK: false,
		},
		{
			name:   "unknown action ignored",
			line:   "CYCLE 12",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			active, ok := parseWatchLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantActive, active)
			}
		})
	}
}

func TestParseActiveChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       []any
		wantActive bool
		wantOK     bool
	}{
		{
			name:       "active true",
			body:       []any{true},
			wantActive: true,
			wantOK:     true,
		},
		{
			name:       "active false",
			body:       []any{false},
			wantActive: false,
			wantOK:     true,
		},
		{
			name:   "empty body",
			body:   []any{},
			wantOK: false,
		},
		{
			name:   "wrong type",
			body:   []any{"true"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			active, ok := parseActiveChanged(tt.body)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantActive, active)
			}
		})
	}
}
