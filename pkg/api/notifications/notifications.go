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

// Package notifications wraps the notification channel sends so callers
// can't get a method name or payload type wrong.
package notifications

import "github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"

func DeckMode(ns chan<- models.Notification, payload models.DeckModeParams) {
	ns <- models.Notification{
		Method: models.NotificationDeckMode,
		Params: payload,
	}
}

func Screensaver(ns chan<- models.Notification, payload models.ScreensaverParams) {
	ns <- models.Notification{
		Method: models.NotificationScreensaver,
		Params: payload,
	}
}

func BacklightChanged(ns chan<- models.Notification, payload models.BacklightChangedParams) {
	ns <- models.Notification{
		Method: models.NotificationBacklightChanged,
		Params: payload,
	}
}

func MeditationStarted(ns chan<- models.Notification, payload models.MeditationStartedParams) {
	ns <- models.Notification{
		Method: models.NotificationMeditationStarted,
		Params: payload,
	}
}

func MeditationStopped(ns chan<- models.Notification, payload models.MeditationStoppedParams) {
	ns <- models.Notification{
		Method: models.NotificationMeditationStopped,
		Params: payload,
	}
}

func MediaIndexing(ns chan<- models.Notification, payload models.MediaIndexingParams) {
	ns <- models.Notification{
		Method: models.NotificationMediaIndexing,
		Params: payload,
	}
}
