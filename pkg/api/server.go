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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/methods"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/middleware"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models/requests"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/validation"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/backlight"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/deck"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/meditate"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/state"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

var (
	JSONRPCErrorParseError     = models.ErrorObject{Code: -32700, Message: "Parse error"}
	JSONRPCErrorInvalidRequest = models.ErrorObject{Code: -32600, Message: "Invalid request"}
	JSONRPCErrorMethodNotFound = models.ErrorObject{Code: -32601, Message: "Method not found"}
	JSONRPCErrorInvalidParams  = models.ErrorObject{Code: -32602, Message: "Invalid params"}
	JSONRPCErrorInternalError  = models.ErrorObject{Code: -32603, Message: "Internal error"}
	JSONRPCErrorServerError    = models.ErrorObject{Code: -32000, Message: "Server error"}
)

const (
	// maxRequestBody caps POST request bodies. Method params are tiny, so
	// anything bigger is garbage or abuse.
	maxRequestBody    = 1 << 20
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var errUnknownMethod = errors.New("unknown method")

var methodMap = map[string]func(requests.RequestEnv) (any, error){
	models.MethodVersion:         methods.HandleVersion,
	models.MethodDeckStatus:      methods.HandleDeckStatus,
	models.MethodDisplayDetect:   methods.HandleDisplayDetect,
	models.MethodDisplayApply:    methods.HandleDisplayApply,
	models.MethodDisplaySetup:    methods.HandleDisplaySetup,
	models.MethodBacklightOn:     methods.HandleBacklightOn,
	models.MethodBacklightOff:    methods.HandleBacklightOff,
	models.MethodBacklightState:  methods.HandleBacklightState,
	models.MethodMeditateStart:   methods.HandleMeditateStart,
	models.MethodMeditateStop:    methods.HandleMeditateStop,
	models.MethodMeditateStatus:  methods.HandleMeditateStatus,
	models.MethodSessionsHistory: methods.HandleSessionsHistory,
	models.MethodSettings:        methods.HandleSettings,
	models.MethodSettingsUpdate:  methods.HandleSettingsUpdate,
	models.MethodSettingsReload:  methods.HandleSettingsReload,
}

// maybeUUID picks the request ID if one was given, otherwise Nil, so error
// responses echo whatever the client sent.
func maybeUUID(req models.RequestObject) uuid.UUID {
	if req.ID == nil {
		return uuid.Nil
	}
	return *req.ID
}

// errorToJSONRPC maps a handler error to the JSON-RPC error object sent back
// to the client. Parameter problems get a descriptive message, everything
// else collapses to a generic server error carrying the error text.
func errorToJSONRPC(err error) models.ErrorObject {
	var validationErr *validation.Error
	switch {
	case errors.Is(err, errUnknownMethod):
		return JSONRPCErrorMethodNotFound
	case errors.As(err, &validationErr):
		rpcErr := JSONRPCErrorInvalidParams
		rpcErr.Message = validationErr.Error()
		return rpcErr
	case errors.Is(err, methods.ErrMissingParams),
		errors.Is(err, methods.ErrInvalidParams),
		errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams):
		rpcErr := JSONRPCErrorInvalidParams
		rpcErr.Message = err.Error()
		return rpcErr
	default:
		rpcErr := JSONRPCErrorServerError
		rpcErr.Message = err.Error()
		return rpcErr
	}
}

// handleRequest validates a client request and runs the matching method,
// returning the method's result object.
func handleRequest(env requests.RequestEnv, req models.RequestObject) (any, error) {
	log.Debug().Str("method", req.Method).Msg("received request")

	fn, ok := methodMap[strings.ToLower(req.Method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownMethod, req.Method)
	}

	if req.ID == nil {
		return nil, errors.New("request id is missing")
	}
	env.ID = *req.ID
	env.Params = req.Params

	return fn(env)
}

func sendResponse(session *melody.Session, id uuid.UUID, result any) error {
	log.Debug().Interface("result", result).Msg("sending response")

	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling response: %w", err)
	}

	err = session.Write(data)
	if err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}

	return nil
}

func sendError(session *melody.Session, id uuid.UUID, rpcErr models.ErrorObject) error {
	log.Debug().Int("code", rpcErr.Code).Str("message", rpcErr.Message).Msg("sending error response")

	resp := models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcErr,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling error response: %w", err)
	}

	err = session.Write(data)
	if err != nil {
		return fmt.Errorf("error writing error response: %w", err)
	}

	return nil
}

// handleResponse is for response objects sent from a client, which isn't
// part of the API, but may as well not be an error.
func handleResponse(resp models.ResponseObject) error {
	log.Debug().Interface("response", resp).Msg("received response")
	return nil
}

// handleWSMessage parses and runs every message arriving on a WebSocket
// session, sending the response or error back on the same session.
func handleWSMessage(env requests.RequestEnv) func(session *melody.Session, msg []byte) {
	return func(session *melody.Session, msg []byte) {
		// heartbeat to keep mobile clients alive through aggressive
		// connection culling
		if bytes.Equal(msg, []byte("ping")) {
			err := session.Write([]byte("pong"))
			if err != nil {
				log.Error().Err(err).Msg("error sending pong")
			}
			return
		}

		if !json.Valid(msg) {
			log.Error().Msg("request is not valid json")
			err := sendError(session, uuid.Nil, JSONRPCErrorParseError)
			if err != nil {
				log.Error().Err(err).Msg("error sending parse error response")
			}
			return
		}

		var req models.RequestObject
		err := json.Unmarshal(msg, &req)

		if err == nil && req.JSONRPC != "2.0" {
			log.Error().Str("version", req.JSONRPC).Msg("unsupported jsonrpc version")
			err := sendError(session, maybeUUID(req), JSONRPCErrorInvalidRequest)
			if err != nil {
				log.Error().Err(err).Msg("error sending invalid request response")
			}
			return
		}

		if err == nil && req.Method != "" {
			if req.ID == nil {
				// request is a notification, we don't act on these
				log.Info().Str("method", req.Method).Msg("received notification, ignoring")
				return
			}

			reqEnv := env
			reqEnv.IsLocal = middleware.IsLoopbackAddr(session.Request.RemoteAddr)

			result, err := handleRequest(reqEnv, req)
			if err != nil {
				log.Error().Err(err).Str("method", req.Method).Msg("error handling request")
				sendErr := sendError(session, *req.ID, errorToJSONRPC(err))
				if sendErr != nil {
					log.Error().Err(sendErr).Msg("error sending error response")
				}
				return
			}

			sendErr := sendResponse(session, *req.ID, result)
			if sendErr != nil {
				log.Error().Err(sendErr).Msg("error sending response")
			}
			return
		}

		var resp models.ResponseObject
		err = json.Unmarshal(msg, &resp)
		if err == nil && resp.ID != uuid.Nil {
			err := handleResponse(resp)
			if err != nil {
				log.Error().Err(err).Msg("error handling response")
			}
			return
		}

		log.Error().Str("request", string(msg)).Msg("message does not map to any expected object")
		err = sendError(session, maybeUUID(req), JSONRPCErrorInvalidRequest)
		if err != nil {
			log.Error().Err(err).Msg("error sending invalid request response")
		}
	}
}

func writeRPCResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		log.Error().Err(err).Msg("error writing post response")
	}
}

func writeRPCError(w http.ResponseWriter, id uuid.UUID, rpcErr models.ErrorObject) {
	writeRPCResponse(w, models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcErr,
	})
}

// handlePostRequest accepts a single JSON-RPC request over plain HTTP POST,
// for clients like curl that don't want to hold a WebSocket open. JSON-RPC
// errors are reported in the response body with a 200 status, HTTP statuses
// are reserved for transport problems.
func handlePostRequest(env requests.RequestEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "application/json") {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			log.Error().Err(err).Msg("error reading post request body")
			http.Error(w, "Error reading request body", http.StatusInternalServerError)
			return
		}

		if !json.Valid(body) {
			log.Error().Msg("post request is not valid json")
			writeRPCError(w, uuid.Nil, JSONRPCErrorParseError)
			return
		}

		var req models.RequestObject
		err = json.Unmarshal(body, &req)
		if err != nil {
			log.Error().Err(err).Msg("error parsing post request")
			writeRPCError(w, uuid.Nil, JSONRPCErrorParseError)
			return
		}

		if req.JSONRPC != "2.0" {
			log.Error().Str("version", req.JSONRPC).Msg("unsupported jsonrpc version")
			writeRPCError(w, maybeUUID(req), JSONRPCErrorInvalidRequest)
			return
		}

		if req.ID == nil {
			// request is a notification, we don't act on these
			log.Info().Str("method", req.Method).Msg("received notification, ignoring")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		reqEnv := env
		reqEnv.IsLocal = middleware.IsLoopbackAddr(r.RemoteAddr)

		result, err := handleRequest(reqEnv, req)
		if err != nil {
			log.Error().Err(err).Str("method", req.Method).Msg("error handling post request")
			writeRPCError(w, *req.ID, errorToJSONRPC(err))
			return
		}

		writeRPCResponse(w, models.ResponseObject{
			JSONRPC: "2.0",
			ID:      *req.ID,
			Result:  result,
		})
	}
}

// broadcastNotifications forwards service notifications to every connected
// WebSocket client as JSON-RPC notification objects.
func broadcastNotifications(
	st *state.State,
	session *melody.Melody,
	notifications <-chan models.Notification,
) {
	for {
		select {
		case <-st.GetContext().Done():
			log.Debug().Msg("stopping api notification broadcaster")
			return
		case notif := <-notifications:
			req := models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
			}

			if notif.Params != nil {
				params, err := json.Marshal(notif.Params)
				if err != nil {
					log.Error().Err(err).Msg("error marshalling notification params")
					continue
				}
				req.Params = params
			}

			data, err := json.Marshal(req)
			if err != nil {
				log.Error().Err(err).Msg("error marshalling notification request")
				continue
			}

			// broadcast from a goroutine so a slow client can never back
			// up the state senders feeding this channel
			go func() {
				err := session.Broadcast(data)
				if err != nil {
					log.Error().Err(err).Msg("error broadcasting notification")
				}
			}()
		}
	}
}

// privateNetworkAccessMiddleware responds to Private Network Access
// preflights, which Chrome sends before allowing a public page to talk to a
// device on the local network.
func privateNetworkAccessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions &&
			r.Header.Get("Access-Control-Request-Private-Network") == "true" {
			w.Header().Set("Access-Control-Allow-Private-Network", "true")
		}
		next.ServeHTTP(w, r)
	})
}

// Start sets up the API server and returns once it's accepting connections.
// The server runs until the state context is cancelled.
func Start(
	cfg *config.Instance,
	st *state.State,
	deckDev *deck.Deck,
	bl *backlight.Backlight,
	runner *meditate.Runner,
	db database.SessionDBI,
	notifications <-chan models.Notification,
) error {
	baseEnv := requests.RequestEnv{
		Config:    cfg,
		State:     st,
		DB:        db,
		Deck:      deckDev,
		Backlight: bl,
		Meditate:  runner,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(chimiddleware.Timeout(config.APIRequestTimeout))
	r.Use(privateNetworkAccessMiddleware)

	allowedOrigins := cfg.AllowedOrigins()
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://*", "capacitor://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	session := melody.New()
	session.Upgrader.CheckOrigin = func(_ *http.Request) bool {
		// origins are handled by the cors middleware before the upgrade
		return true
	}

	go broadcastNotifications(st, session, notifications)

	rateLimiter := middleware.NewIPRateLimiter()
	rateLimiter.StartCleanup(st.GetContext())

	session.HandleMessage(middleware.WebSocketRateLimitHandler(
		rateLimiter, handleWSMessage(baseEnv),
	))

	ipFilter := middleware.NewIPFilter(cfg.AllowedIPs())

	r.Group(func(r chi.Router) {
		r.Use(middleware.HTTPIPFilterMiddleware(ipFilter))
		r.Use(middleware.HTTPRateLimitMiddleware(rateLimiter))

		handleWS := func(w http.ResponseWriter, r *http.Request) {
			err := session.HandleRequest(w, r)
			if err != nil {
				log.Error().Err(err).Msg("error handling websocket request")
			}
		}

		r.Get("/api", handleWS)
		r.Get("/api/v0.1", handleWS)
		r.Post("/api", handlePostRequest(baseEnv))
		r.Post("/api/v0.1", handlePostRequest(baseEnv))
	})

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.APIPort()))
	if err != nil {
		return fmt.Errorf("error listening on api port: %w", err)
	}

	log.Info().Msgf("api server listening on %s", listener.Addr().String())

	go func() {
		err := srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("error in api server")
		}
	}()

	go func() {
		<-st.GetContext().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			log.Error().Err(err).Msg("error shutting down api server")
		}

		err = session.Close()
		if err != nil {
			log.Error().Err(err).Msg("error closing websocket sessions")
		}
	}()

	return nil
}
