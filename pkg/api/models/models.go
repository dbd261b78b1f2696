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
	"encoding/json"

	"github.com/google/uuid"
)

const (
	NotificationDeckMode          = "deck.mode"
	NotificationScreensaver       = "power.screensaver"
	NotificationBacklightChanged  = "backlight.changed"
	NotificationMeditationStarted = "meditation.started"
	NotificationMeditationStopped = "meditation.stopped"
	NotificationMediaIndexing     = "media.indexing"
)

const (
	MethodVersion         = "version"
	MethodDeckStatus      = "deck.status"
	MethodDisplayDetect   = "display.detect"
	MethodDisplayApply    = "display.apply"
	MethodDisplaySetup    = "display.setup"
	MethodBacklightOn     = "backlight.on"
	MethodBacklightOff    = "backlight.off"
	MethodBacklightState  = "backlight.state"
	MethodMeditateStart   = "meditate.start"
	MethodMeditateStop    = "meditate.stop"
	MethodMeditateStatus  = "meditate.status"
	MethodSessionsHistory = "sessions.history"
	MethodSettings        = "settings"
	MethodSettingsUpdate  = "settings.update"
	MethodSettingsReload  = "settings.reload"
)

// Notification is an event on its way to connected clients. Params is
// marshaled by the broadcaster, so senders hand over plain structs.
type Notification struct {
	Params any
	Method string
}

type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uuid.UUID      `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ResponseObject struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
}

// ResponseErrorObject exists for sending errors, so we can omit result from
// the response, but so nil responses are still returned when using the main
// ResponseObject.
type ResponseErrorObject struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
	Error   *ErrorObject `json:"error"`
}
