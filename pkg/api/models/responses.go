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

import (
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/display"
)

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

type BacklightStateResponse struct {
	Available bool `json:"available"`
	On        bool `json:"on"`
}

// MeditationStatusResponse is the wire form of a session snapshot, with
// durations flattened to whole seconds.
type MeditationStatusResponse struct {
	StartedAt     time.Time `json:"startedAt"`
	TrackName     string    `json:"trackName,omitempty"`
	RequestedSecs int       `json:"requestedSecs"`
	PlayedSecs    int       `json:"playedSecs"`
	TrackIndex    int       `json:"trackIndex"`
	TrackCount    int       `json:"trackCount"`
	Running       bool      `json:"running"`
	Alarming      bool      `json:"alarming"`
}

type DisplayDetectResponse struct {
	Mode     display.Mode      `json:"mode"`
	Monitors []display.Monitor `json:"monitors"`
}

// DeckStatusResponse aggregates everything the status screen shows in
// one round trip.
type DeckStatusResponse struct {
	Model         string                   `json:"model"`
	DisplayEngine string                   `json:"displayEngine"`
	Overlay       string                   `json:"overlay,omitempty"`
	Mode          display.Mode             `json:"mode"`
	Monitors      []display.Monitor        `json:"monitors"`
	Backlight     BacklightStateResponse   `json:"backlight"`
	Meditation    MeditationStatusResponse `json:"meditation"`
	RaspberryPi   bool                     `json:"raspberryPi"`
	EngineActive  bool                     `json:"engineActive"`
	Screensaver   bool                     `json:"screensaverActive"`
}

// SessionsHistoryResponse pages meditation sessions newest first. LastID
// feeds the next request's lastId param; HasMore is a hint, not a
// guarantee, since rows can be written between pages.
type SessionsHistoryResponse struct {
	Sessions []database.MeditationSession `json:"sessions"`
	LastID   int64                        `json:"lastId"`
	HasMore  bool                         `json:"hasMore"`
}

type SettingsResponse struct {
	HDMIOutput       string `json:"hdmiOutput"`
	TouchOutput      string `json:"touchOutput"`
	TouchDevice      string `json:"touchDevice"`
	DelegateScript   string `json:"delegateScript"`
	BacklightPath    string `json:"backlightPath"`
	APIPort          int    `json:"apiPort"`
	PaddingSeconds   int    `json:"paddingSeconds"`
	DebugLogging     bool   `json:"debugLogging"`
	ErrorReporting   bool   `json:"errorReporting"`
	LaunchTerminal   bool   `json:"launchTerminal"`
	ScreensaverWatch bool   `json:"screensaverWatch"`
	WakeKey          bool   `json:"wakeKey"`
}
