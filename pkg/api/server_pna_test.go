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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPrivateNetworkAccessMiddleware checks the Private Network Access
// preflight handling, which browsers require before a public page may reach
// a deck on the local network.
func TestPrivateNetworkAccessMiddleware(t *testing.T) {
	t.Parallel()

	handler := privateNetworkAccessMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	tests := []struct {
		name       string
		method     string
		pnaRequest string
		wantHeader string
	}{
		{
			name:       "preflight with pna header gets allow header",
			method:     http.MethodOptions,
			pnaRequest: "true",
			wantHeader: "true",
		},
		{
			name:   "preflight without pna header is untouched",
			method: http.MethodOptions,
		},
		{
			name:       "pna header on get is ignored",
			method:     http.MethodGet,
			pnaRequest: "true",
		},
		{
			name:       "pna header on post is ignored",
			method:     http.MethodPost,
			pnaRequest: "true",
		},
		{
			name:       "preflight with pna false is ignored",
			method:     http.MethodOptions,
			pnaRequest: "false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api", http.NoBody)
			if tt.pnaRequest != "" {
				req.Header.Set("Access-Control-Request-Private-Network", tt.pnaRequest)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			got := rr.Header().Get("Access-Control-Allow-Private-Network")
			assert.Equal(t, tt.wantHeader, got)
			assert.Equal(t, http.StatusOK, rr.Code, "middleware should always pass through")
		})
	}
}
