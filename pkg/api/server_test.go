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

package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/methods"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models/requests"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/validation"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/state"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaybeUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	assert.Equal(t, id, maybeUUID(models.RequestObject{ID: &id}))
	assert.Equal(t, uuid.Nil, maybeUUID(models.RequestObject{}))
}

func TestErrorToJSONRPC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err         error
		name        string
		wantMessage string
		wantCode    int
	}{
		{
			name:        "unknown method",
			err:         fmt.Errorf("%w: bogus.method", errUnknownMethod),
			wantCode:    -32601,
			wantMessage: "Method not found",
		},
		{
			name:        "missing params sentinel",
			err:         methods.ErrMissingParams,
			wantCode:    -32602,
			wantMessage: "missing params",
		},
		{
			name:        "invalid params sentinel",
			err:         validation.ErrInvalidParams,
			wantCode:    -32602,
			wantMessage: "invalid params",
		},
		{
			name: "validation error keeps field message",
			err: &validation.Error{Fields: []validation.FieldError{
				{Field: "Limit", Tag: "lte", Message: "limit must be at most 250"},
			}},
			wantCode:    -32602,
			wantMessage: "limit must be at most 250",
		},
		{
			name:        "handler error becomes server error",
			err:         errors.New("backlight not available"),
			wantCode:    -32000,
			wantMessage: "backlight not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rpcErr := errorToJSONRPC(tt.err)
			assert.Equal(t, tt.wantCode, rpcErr.Code)
			assert.Equal(t, tt.wantMessage, rpcErr.Message)
		})
	}
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	_, err := handleRequest(requests.RequestEnv{}, models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  "deck.selfdestruct",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnknownMethod)
}

func TestHandleRequest_MethodLookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	st, _ := state.NewState("boot-uuid")
	defer st.StopService()

	id := uuid.New()
	result, err := handleRequest(
		requests.RequestEnv{Config: cfg, State: st},
		models.RequestObject{JSONRPC: "2.0", ID: &id, Method: "VERSION"},
	)
	require.NoError(t, err)

	version, ok := result.(models.VersionResponse)
	require.True(t, ok, "version should return a VersionResponse")
	assert.Equal(t, config.AppVersion, version.Version)
}

func TestHandleRequest_MissingID(t *testing.T) {
	t.Parallel()

	_, err := handleRequest(requests.RequestEnv{}, models.RequestObject{
		JSONRPC: "2.0",
		Method:  models.MethodVersion,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, errUnknownMethod)
}
