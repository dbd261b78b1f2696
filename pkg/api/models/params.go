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

package models

// MeditateStartParams starts a meditation session. Track and Program are
// mutually exclusive; with neither set the whole library plays shuffled.
// Duration is in seconds and capped at a day.
type MeditateStartParams struct {
	Duration *int    `json:"duration" mapstructure:"duration" validate:"omitempty,gt=0,lte=86400"`
	Track    *string `json:"track"    mapstructure:"track"    validate:"omitempty,min=1,max=128,plainname"`
	Program  *string `json:"program"  mapstructure:"program"  validate:"omitempty,min=1,max=128,plainname"`
}

// SessionsHistoryParams pages through stored sessions, newest first.
// LastID of 0 starts from the most recent record.
type SessionsHistoryParams struct {
	LastID int64 `json:"lastId" validate:"omitempty,gte=0"`
	Limit  int   `json:"limit"  validate:"omitempty,gte=1,lte=100"`
}

// UpdateSettingsParams carries the settings that may be changed over the
// API. Only non-nil fields are applied.
type UpdateSettingsParams struct {
	DebugLogging     *bool `json:"debugLogging"`
	ErrorReporting   *bool `json:"errorReporting"`
	ScreensaverWatch *bool `json:"screensaverWatch"`
	WakeKey          *bool `json:"wakeKey"`
}

// Notification payloads.

type DeckModeParams struct {
	Mode string `json:"mode"`
}

type ScreensaverParams struct {
	Active bool `json:"active"`
}

type BacklightChangedParams struct {
	On bool `json:"on"`
}

type MeditationStartedParams struct {
	Track         string `json:"track,omitempty"`
	Program       string `json:"program,omitempty"`
	RequestedSecs int    `json:"requestedSecs"`
}

type MeditationStoppedParams struct {
	PlayedSecs int `json:"playedSecs"`
}

type MediaIndexingParams struct {
	TotalTracks int  `json:"totalTracks"`
	Indexing    bool `json:"indexing"`
}
