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
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models/requests"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/notifications"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/validation"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/meditate"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
)

// parseMeditateStartParams decodes params leniently, so clients may send
// duration as a number or a string.
func parseMeditateStartParams(raw json.RawMessage) (models.MeditateStartParams, error) {
	var params models.MeditateStartParams
	if len(raw) == 0 {
		return params, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return params, ErrInvalidParams
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return params, ErrInvalidParams
	}
	if err := decoder.Decode(fields); err != nil {
		return params, ErrInvalidParams
	}

	if err := validation.DefaultValidator.Validate(&params); err != nil {
		return params, err
	}

	if params.Track != nil && params.Program != nil {
		return params, errors.New("track and program are mutually exclusive")
	}

	return params, nil
}

func HandleMeditateStart(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received meditate start request")

	if env.Meditate == nil {
		return nil, errors.New("meditation not available")
	}
	if env.Meditate.Status().Running {
		return nil, meditate.ErrSessionRunning
	}

	params, err := parseMeditateStartParams(env.Params)
	if err != nil {
		return nil, err
	}

	opts := meditate.Options{}
	started := models.MeditationStartedParams{
		RequestedSecs: int(meditate.DefaultDuration.Seconds()),
	}
	// A zero duration is treated as unset, matching the validator.
	if params.Duration != nil && *params.Duration > 0 {
		opts.Duration = time.Duration(*params.Duration) * time.Second
		started.RequestedSecs = *params.Duration
	}
	if params.Track != nil {
		opts.Track = *params.Track
		started.Track = *params.Track
		started.RequestedSecs = 0
	}
	if params.Program != nil {
		opts.Program = *params.Program
		started.Program = *params.Program
		started.RequestedSecs = 0
	}

	ctx, cancel := context.WithCancel(env.State.GetContext())
	env.State.SetMeditationCancel(cancel)
	notifications.MeditationStarted(env.State.Notifications, started)

	go func() {
		err := env.Meditate.Run(ctx, opts)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			log.Debug().Msg("meditation session cancelled")
		default:
			log.Error().Err(err).Msg("meditation session failed")
		}

		// Release the context unless a stop request already took it.
		if stored := env.State.TakeMeditationCancel(); stored != nil {
			stored()
		}
		notifications.MeditationStopped(env.State.Notifications, models.MeditationStoppedParams{
			PlayedSecs: int(env.Meditate.Status().Played.Seconds()),
		})
	}()

	return NoContent{}, nil
}

func HandleMeditateStop(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received meditate stop request")

	cancel := env.State.TakeMeditationCancel()
	if cancel == nil {
		return nil, errors.New("no meditation session running")
	}
	cancel()

	return NoContent{}, nil
}

func HandleMeditateStatus(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received meditate status request")

	if env.Meditate == nil {
		return nil, errors.New("meditation not available")
	}

	return meditationStatusResponse(env.Meditate.Status()), nil
}

func meditationStatusResponse(status meditate.Status) models.MeditationStatusResponse {
	return models.MeditationStatusResponse{
		StartedAt:     status.StartedAt,
		TrackName:     status.TrackName,
		RequestedSecs: int(status.Requested.Seconds()),
		PlayedSecs:    int(status.Played.Seconds()),
		TrackIndex:    status.TrackIndex,
		TrackCount:    status.TrackCount,
		Running:       status.Running,
		Alarming:      status.Alarming,
	}
}
