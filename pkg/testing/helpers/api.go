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

package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
)

// WebSocketTestServer stands in for the API server in client tests. The
// handler receives every message a client sends; Melody is exposed so tests
// can broadcast notifications to connected clients.
type WebSocketTestServer struct {
	Server *httptest.Server
	Melody *melody.Melody
}

// NewWebSocketTestServer starts a WebSocket server on a random port with the
// given message handler. Handler may be nil for tests that only broadcast.
func NewWebSocketTestServer(t *testing.T, handler func(*melody.Session, []byte)) *WebSocketTestServer {
	t.Helper()

	m := melody.New()
	if handler != nil {
		m.HandleMessage(handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0.1", func(w http.ResponseWriter, r *http.Request) {
		_ = m.HandleRequest(w, r)
	})

	server := httptest.NewServer(mux)

	// brief settle so the first upgrade can't hit a half-started server
	// under CI load
	time.Sleep(5 * time.Millisecond)

	return &WebSocketTestServer{
		Server: server,
		Melody: m,
	}
}

// Port returns the random port the test server is listening on.
func (s *WebSocketTestServer) Port(t *testing.T) int {
	t.Helper()

	u, err := url.Parse(s.Server.URL)
	if err != nil {
		t.Fatalf("parsing test server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing test server port: %v", err)
	}
	return port
}

// Dial connects a raw WebSocket client to the test server. The connection is
// closed automatically when the test finishes.
func (s *WebSocketTestServer) Dial(t *testing.T) *websocket.Conn {
	t.Helper()

	u, err := url.Parse(s.Server.URL)
	if err != nil {
		t.Fatalf("parsing test server url: %v", err)
	}
	u.Scheme = "ws"
	u.Path = "/api/v0.1"

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dialing test server: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// Close shuts down the test server and all its sessions.
func (s *WebSocketTestServer) Close() {
	s.Server.Close()
	_ = s.Melody.Close()
}

// RespondWith builds a message handler that answers every request with the
// given JSON-RPC result, echoing the request id.
func RespondWith(result string) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		resp := fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":%s}`, RequestID(msg), result)
		_ = session.Write([]byte(resp))
	}
}

// RespondWithError builds a message handler that answers every request with
// the given JSON-RPC error object.
func RespondWithError(code int, message string) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		resp := fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"error":{"code":%d,"message":%q}}`,
			RequestID(msg), code, message)
		_ = session.Write([]byte(resp))
	}
}

// RequestID extracts the raw id literal from a JSON-RPC request, quotes
// included, for echoing back in a handcrafted response.
func RequestID(msg []byte) string {
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(msg, &req); err != nil || len(req.ID) == 0 {
		return "null"
	}
	return string(req.ID)
}
