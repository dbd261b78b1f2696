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
	"github.com/CyberdeckProject/cyberdeck-core/pkg/display"
	"github.com/rs/zerolog/log"
)

func HandleDeckStatus(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received deck status request")

	if env.Deck == nil {
		return nil, errors.New("deck not available")
	}

	status := env.Deck.Status(env.State.GetContext())

	resp := models.DeckStatusResponse{
		Model:         status.Model,
		DisplayEngine: status.DisplayEngine,
		Overlay:       status.Overlay,
		Mode:          status.Mode,
		Monitors:      status.Monitors,
		RaspberryPi:   status.RaspberryPi,
		EngineActive:  status.EngineActive,
		Screensaver:   env.State.ScreensaverActive(),
	}

	if env.Backlight != nil && env.Backlight.Available() {
		resp.Backlight.Available = true
		on, err := env.Backlight.IsOn()
		if err != nil {
			log.Warn().Err(err).Msg("backlight state not readable")
		}
		resp.Backlight.On = on
	}

	if env.Meditate != nil {
		resp.Meditation = meditationStatusResponse(env.Meditate.Status())
	}

	return resp, nil
}

func HandleDisplayDetect(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received display detect request")

	if env.Deck == nil {
		return nil, errors.New("deck not available")
	}

	status := env.Deck.Status(env.State.GetContext())
	env.State.SetDeckMode(status.Mode)

	monitors := status.Monitors
	if monitors == nil {
		monitors = make([]display.Monitor, 0)
	}

	return models.DisplayDetectResponse{
		Mode:     status.Mode,
		Monitors: monitors,
	}, nil
}

func HandleDisplayApply(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received display apply request")

	if env.Deck == nil {
		return nil, errors.New("deck not available")
	}

	if err := env.Deck.ApplyLayout(env.State.GetContext()); err != nil {
		log.Error().Err(err).Msg("error applying display layout")
		return nil, errors.New("error applying display layout")
	}

	return NoContent{}, nil
}

func HandleDisplaySetup(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received display setup request")

	if env.Deck == nil {
		return nil, errors.New("deck not available")
	}

	if err := env.Deck.SetupRemote(env.State.GetContext()); err != nil {
		log.Error().Err(err).Msg("error running display setup")
		return nil, errors.New("error running display setup")
	}

	return NoContent{}, nil
}
