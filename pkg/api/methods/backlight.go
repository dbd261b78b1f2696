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
	"errors"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models/requests"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/notifications"
	"github.com/rs/zerolog/log"
)

var ErrBacklightUnavailable = errors.New("backlight not available")

func HandleBacklightOn(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received backlight on request")
	return setBacklight(env, true)
}

func HandleBacklightOff(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received backlight off request")
	return setBacklight(env, false)
}

func setBacklight(env requests.RequestEnv, on bool) (any, error) { //nolint:gocritic // single-use parameter in API handler
	if env.Backlight == nil || !env.Backlight.Available() {
		return nil, ErrBacklightUnavailable
	}

	if err := env.Backlight.SetPower(on); err != nil {
		log.Error().Err(err).Bool("on", on).Msg("error setting backlight power")
		return nil, errors.New("error setting backlight power")
	}

	notifications.BacklightChanged(env.State.Notifications, models.BacklightChangedParams{On: on})

	return NoContent{}, nil
}

func HandleBacklightState(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received backlight state request")

	if env.Backlight == nil || !env.Backlight.Available() {
		return models.BacklightStateResponse{}, nil
	}

	on, err := env.Backlight.IsOn()
	if err != nil {
		log.Error().Err(err).Msg("error reading backlight state")
		return nil, errors.New("error reading backlight state")
	}

	return models.BacklightStateResponse{
		Available: true,
		On:        on,
	}, nil
}
