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

package requests

import (
	"encoding/json"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/backlight"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/deck"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/meditate"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/state"
	"github.com/google/uuid"
)

// RequestEnv is everything a method handler may touch, assembled once
// per request by the server.
type RequestEnv struct {
	Config    *config.Instance
	State     *state.State
	DB        database.SessionDBI
	Deck      *deck.Deck
	Backlight *backlight.Backlight
	Meditate  *meditate.Runner
	Params    json.RawMessage
	ID        uuid.UUID
	IsLocal   bool
}
