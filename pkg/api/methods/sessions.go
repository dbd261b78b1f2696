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
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/validation"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/rs/zerolog/log"
)

const defaultHistoryLimit = 25

func HandleSessionsHistory(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received sessions history request")

	if env.DB == nil {
		return nil, errors.New("session database not available")
	}

	var params models.SessionsHistoryParams
	if len(env.Params) > 0 {
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			return nil, err
		}
	}

	limit := params.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	sessions, err := env.DB.GetMeditationSessions(int(params.LastID), limit)
	if err != nil {
		log.Error().Err(err).Msg("error getting meditation sessions")
		return nil, errors.New("error getting meditation sessions")
	}

	resp := models.SessionsHistoryResponse{
		Sessions: make([]database.MeditationSession, 0, len(sessions)),
		HasMore:  len(sessions) == limit,
	}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, session)
		resp.LastID = session.DBID
	}

	return resp, nil
}
