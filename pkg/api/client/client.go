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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api/v0.1"

func localWebsocketURL(cfg *config.Instance) url.URL {
	return url.URL{
		Scheme: "ws",
		Host:   "localhost:" + strconv.Itoa(cfg.APIPort()),
		Path:   APIPath,
	}
}

func closeWebsocket(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing websocket")
	}
}

// LocalClient sends a single unauthenticated method with params to the local
// running API service, waits for a response until timeout then disconnects.
func LocalClient(
	ctx context.Context,
	cfg *config.Instance,
	method string,
	params string,
) (string, error) {
	wsURL := localWebsocketURL(cfg)

	id := uuid.New()
	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}

	if len(params) == 0 {
		req.Params = nil
	} else if json.Valid([]byte(params)) {
		req.Params = json.RawMessage(params)
	} else {
		return "", ErrInvalidParams
	}

	c, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to dial websocket: %w", err)
	}
	defer closeWebsocket(c)

	done := make(chan struct{})
	var resp *models.ResponseObject

	go func() {
		defer close(done)
		for {
			_, message, readErr := c.ReadMessage()
			if readErr != nil {
				log.Debug().Err(readErr).Msg("error reading message")
				return
			}

			var m models.ResponseObject
			if jsonErr := json.Unmarshal(message, &m); jsonErr != nil {
				continue
			}

			if m.JSONRPC != "2.0" {
				log.Debug().Msg("ignoring response with invalid jsonrpc version")
				continue
			}

			// notifications and responses to other requests also arrive
			// here, only our own id ends the wait
			if m.ID != id {
				continue
			}

			resp = &m
			return
		}
	}()

	if writeErr := c.WriteJSON(req); writeErr != nil {
		return "", fmt.Errorf("failed to send request: %w", writeErr)
	}

	timer := time.NewTimer(config.APIRequestTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		closeWebsocket(c)
		return "", ErrRequestTimeout
	case <-ctx.Done():
		closeWebsocket(c)
		return "", ErrRequestCancelled
	}

	if resp == nil {
		return "", ErrRequestTimeout
	}

	if resp.Error != nil {
		return "", errors.New(resp.Error.Message)
	}

	b, err := json.Marshal(resp.Result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(b), nil
}

// WaitNotification connects to the local API service and blocks until a
// notification with the given method arrives, returning its params as JSON.
// A zero timeout uses the default request timeout, a negative timeout waits
// forever.
func WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	cfg *config.Instance,
	method string,
) (string, error) {
	_, params, err := WaitNotifications(ctx, timeout, cfg, method)
	return params, err
}

// WaitNotifications connects to the local API service and blocks until a
// notification matching any of the given methods arrives. It returns the
// matched method and its params as JSON. Timeout semantics are the same as
// WaitNotification.
func WaitNotifications(
	ctx context.Context,
	timeout time.Duration,
	cfg *config.Instance,
	methods ...string,
) (string, string, error) {
	wsURL := localWebsocketURL(cfg)

	c, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to dial websocket: %w", err)
	}
	defer closeWebsocket(c)

	wanted := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		wanted[m] = struct{}{}
	}

	done := make(chan struct{})
	var notif *models.RequestObject

	go func() {
		defer close(done)
		for {
			_, message, readErr := c.ReadMessage()
			if readErr != nil {
				log.Debug().Err(readErr).Msg("error reading message")
				return
			}

			var m models.RequestObject
			if jsonErr := json.Unmarshal(message, &m); jsonErr != nil {
				continue
			}

			if m.JSONRPC != "2.0" {
				log.Debug().Msg("ignoring notification with invalid jsonrpc version")
				continue
			}

			// anything carrying an id is a request or a response, not a
			// notification
			if m.ID != nil {
				continue
			}

			if _, ok := wanted[m.Method]; !ok {
				continue
			}

			notif = &m
			return
		}
	}()

	var timerChan <-chan time.Time
	if timeout >= 0 {
		waitFor := timeout
		if waitFor == 0 {
			waitFor = config.APIRequestTimeout
		}
		timer := time.NewTimer(waitFor)
		defer timer.Stop()
		timerChan = timer.C
	}
	// a negative timeout leaves the channel nil, which never receives

	select {
	case <-done:
	case <-timerChan:
		closeWebsocket(c)
		return "", "", ErrRequestTimeout
	case <-ctx.Done():
		closeWebsocket(c)
		return "", "", ErrRequestCancelled
	}

	if notif == nil {
		return "", "", ErrRequestTimeout
	}

	b, err := json.Marshal(notif.Params)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal params: %w", err)
	}

	return notif.Method, string(b), nil
}

// IsServiceRunning reports whether the API service is accepting requests on
// the configured port.
func IsServiceRunning(cfg *config.Instance) bool {
	_, err := LocalClient(context.Background(), cfg, models.MethodVersion, "")
	if err != nil {
		log.Debug().Err(err).Msg("error checking if service running")
		return false
	}
	return true
}

// WaitForAPI polls the API service until it responds or the timeout elapses,
// checking every interval. It reports whether the service came up in time.
func WaitForAPI(cfg *config.Instance, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if IsServiceRunning(cfg) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
