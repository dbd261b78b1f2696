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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models/requests"
	"github.com/rs/zerolog/log"
)

func HandleSettings(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received settings request")

	resp := models.SettingsResponse{
		HDMIOutput:       env.Config.HDMIOutput(),
		TouchOutput:      env.Config.TouchOutput(),
		TouchDevice:      env.Config.TouchDevice(),
		DelegateScript:   env.Config.DelegateScript(),
		BacklightPath:    env.Config.BacklightPath(),
		APIPort:          env.Config.APIPort(),
		PaddingSeconds:   env.Config.PaddingSeconds(),
		DebugLogging:     env.Config.IsDebugLoggingEnabled(),
		ErrorReporting:   env.Config.ErrorReporting(),
		LaunchTerminal:   env.Config.LaunchTerminal(),
		ScreensaverWatch: env.Config.ScreensaverWatchEnabled(),
		WakeKey:          env.Config.WakeKeyEnabled(),
	}

	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettingsReload(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings reload request")

	err := env.Config.Load()
	if err != nil {
		log.Error().Err(err).Msg("error loading settings")
		return nil, errors.New("error loading settings")
	}

	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	if len(env.Params) == 0 {
		return nil, ErrMissingParams
	}

	var params models.UpdateSettingsParams
	err := json.Unmarshal(env.Params, &params)
	if err != nil {
		return nil, ErrInvalidParams
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
	}

	if params.ErrorReporting != nil {
		log.Info().Bool("errorReporting", *params.ErrorReporting).Msg("update")
		env.Config.SetErrorReporting(*params.ErrorReporting)
	}

	if params.ScreensaverWatch != nil {
		log.Info().Bool("screensaverWatch", *params.ScreensaverWatch).Msg("update")
		env.Config.SetScreensaverWatch(*params.ScreensaverWatch)
	}

	if params.WakeKey != nil {
		log.Info().Bool("wakeKey", *params.WakeKey).Msg("update")
		env.Config.SetWakeKey(*params.WakeKey)
	}

	err = env.Config.Save()
	if err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return NoContent{}, nil
}
