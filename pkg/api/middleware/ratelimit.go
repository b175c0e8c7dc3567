// GamerCred Companion
// Copyright (c) 2026 The GamerCred Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of GamerCred Companion.
//
// GamerCred Companion is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamerCred Companion is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamerCred Companion.  If not, see <http://www.gnu.org/licenses/>.

package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	RequestsPerMinute = 120
	BurstSize         = 20
	staleAfter        = 10 * time.Minute
	cleanupInterval   = 5 * time.Minute
)

// ErrorCodeRateLimited is the JSON-RPC server error code for a dropped
// request.
const ErrorCodeRateLimited = -32000

// ClientRateLimiter keeps one token bucket per remote address. Every
// websocket connection has its own address, so one misbehaving UI window
// can't starve the others.
type ClientRateLimiter struct {
	clock    clockwork.Clock
	limiters map[string]*rateLimiterEntry
	limit    rate.Limit
	burst    int
	mu       syncutil.Mutex
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewClientRateLimiter(clock clockwork.Clock) *ClientRateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClientRateLimiter{
		clock:    clock,
		limiters: make(map[string]*rateLimiterEntry),
		limit:    rate.Limit(float64(RequestsPerMinute) / 60.0),
		burst:    BurstSize,
	}
}

// Allow spends one token from key's bucket.
func (rl *ClientRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Forget drops key's bucket, for when a connection closes.
func (rl *ClientRateLimiter) Forget(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, key)
}

func (rl *ClientRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Cleanup removes buckets that haven't been used recently.
func (rl *ClientRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > staleAfter {
			delete(rl.limiters, key)
			log.Debug().Str("client", key).Msg("api: removed stale rate limiter")
		}
	}
}

// RunCleanup calls Cleanup periodically until ctx is done.
func (rl *ClientRateLimiter) RunCleanup(ctx context.Context) {
	ticker := rl.clock.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			rl.Cleanup()
		}
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// HTTPRateLimit limits plain HTTP requests per remote host.
func HTTPRateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := remoteHost(r.RemoteAddr)
			if !limiter.Allow(host) {
				log.Warn().Str("ip", host).Str("path", r.URL.Path).Msg("api: http rate limit exceeded")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WebSocketRateLimit wraps a melody message handler. Dropped messages get
// a JSON-RPC error with a null id.
func WebSocketRateLimit(
	limiter *ClientRateLimiter,
	handler func(*melody.Session, []byte),
) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		key := session.Request.RemoteAddr
		if limiter.Allow(key) {
			handler(session, msg)
			return
		}

		log.Warn().Str("client", key).Int("size", len(msg)).Msg("api: websocket rate limit exceeded")
		data, err := json.Marshal(models.ResponseErrorObject{
			JSONRPC: "2.0",
			Error: &models.ErrorObject{
				Code:    ErrorCodeRateLimited,
				Message: "Rate limit exceeded",
			},
		})
		if err != nil {
			log.Error().Err(err).Msg("api: failed to marshal rate limit error")
			return
		}
		if err := session.Write(data); err != nil {
			log.Debug().Err(err).Msg("api: failed to send rate limit error")
		}
	}
}
