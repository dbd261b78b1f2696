// Cyberdeck Core
// Copyright (c) 2026 The Cyberdeck Project Contributors.
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

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/syncutil"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// RequestsPerMinute is the per-IP budget shared by HTTP and WebSocket.
	RequestsPerMinute = 100
	// BurstSize allows short spikes above the steady rate.
	BurstSize = 20

	staleAfter      = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// IPRateLimiter manages rate limiters per IP address for both HTTP and
// WebSocket traffic.
type IPRateLimiter struct {
	limiters map[string]*rateLimiterEntry
	mu       syncutil.RWMutex
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter() *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
	}
}

// GetLimiter returns the rate limiter for the given IP, creating one on
// first sight.
func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(float64(RequestsPerMinute)/60.0), BurstSize)
		entry = &rateLimiterEntry{
			limiter:  limiter,
			lastSeen: time.Now(),
		}
		rl.limiters[ip] = entry
	} else {
		entry.lastSeen = time.Now()
	}

	return entry.limiter
}

// Cleanup removes entries that haven't been seen recently.
func (rl *IPRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > staleAfter {
			delete(rl.limiters, ip)
			log.Debug().Str("ip", ip).Msg("removed stale rate limiter")
		}
	}
}

// StartCleanup starts a goroutine to periodically clean up old rate
// limiters. It stops when the provided context is cancelled.
func (rl *IPRateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// HTTPRateLimitMiddleware creates an HTTP rate limiting middleware.
func HTTPRateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ParseRemoteIP(r.RemoteAddr)
			host := ip.String()
			rl := limiter.GetLimiter(host)

			if !rl.Allow() {
				log.Warn().
					Str("ip", host).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("HTTP rate limit exceeded")

				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WebSocketRateLimitHandler wraps a WebSocket message handler with rate
// limiting. Rejected messages get a JSON-RPC server error with a null id
// since the request is dropped unparsed.
func WebSocketRateLimitHandler(
	limiter *IPRateLimiter,
	handler func(*melody.Session, []byte),
) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		ip := ParseRemoteIP(session.Request.RemoteAddr)
		host := ip.String()
		rl := limiter.GetLimiter(host)

		if !rl.Allow() {
			log.Warn().
				Str("ip", host).
				Int("msg_size", len(msg)).
				Msg("WebSocket rate limit exceeded")

			type jsonRPCError struct {
				Message string `json:"message"`
				Code    int    `json:"code"`
			}
			type jsonRPCErrorResponse struct {
				ID      any          `json:"id"`
				JSONRPC string       `json:"jsonrpc"`
				Error   jsonRPCError `json:"error"`
			}
			resp := jsonRPCErrorResponse{
				JSONRPC: "2.0",
				ID:      nil,
				Error: jsonRPCError{
					Code:    -32000,
					Message: "Rate limit exceeded",
				},
			}
			errorMsg, marshalErr := json.Marshal(resp)
			if marshalErr != nil {
				log.Error().Err(marshalErr).Msg("failed to marshal rate limit error")
				return
			}
			if err := session.Write(errorMsg); err != nil {
				log.Error().Err(err).Msg("failed to send rate limit error")
			}
			return
		}

		handler(session, msg)
	}
}
