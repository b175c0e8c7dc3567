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

// Package backend talks to the GamerCred REST API: it logs finished
// sessions and fetches the stats, leaderboard and activity feeds the UI
// shows.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/heyclandestine/gamercred/pkg/metrics"
	"github.com/heyclandestine/gamercred/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

const (
	PathLogGame     = "/api/log-game"
	PathStats       = "/api/stats"
	PathLeaderboard = "/api/leaderboard"
	PathActivity    = "/api/activity"

	maxErrorBody = 4096
	readRetries  = 2
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

type LogGameRequest struct {
	Game  string  `json:"game"`
	Hours float64 `json:"hours"`
}

type Client struct {
	http    *httpclient.Client
	reads   *http.Client
	token   httpclient.TokenFunc
	baseURL string
}

// New builds a client for baseURL. token is consulted on every request so
// a login or logout takes effect immediately.
func New(baseURL string, timeout time.Duration, token httpclient.TokenFunc) *Client {
	return newClient(baseURL, httpclient.NewClient(timeout, token), token)
}

func newClient(baseURL string, hc *httpclient.Client, token httpclient.TokenFunc) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc.Client
	rc.RetryMax = readRetries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    hc,
		reads:   rc.StandardClient(),
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// LogGame records hours played for game. It is not retried: a repeat
// after an ambiguous failure would double count.
func (c *Client) LogGame(ctx context.Context, req LogGameRequest) error {
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		if token == "" {
			return ErrNotLoggedIn
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode log request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathLogGame, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build log request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(PathLogGame, metrics.StatusClass(0)).Inc()
		return fmt.Errorf("failed to log session: %w", err)
	}
	defer closeBody(resp)
	metrics.BackendRequests.WithLabelValues(PathLogGame, metrics.StatusClass(resp.StatusCode)).Inc()

	if err := checkStatus(resp); err != nil {
		return err
	}
	log.Info().Str("game", req.Game).Float64("hours", req.Hours).Msg("backend: session logged")
	return nil
}

// Stats returns the signed-in user's stats as the backend sent them.
func (c *Client) Stats(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, PathStats)
}

func (c *Client) Leaderboard(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, PathLeaderboard)
}

func (c *Client) Activity(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, PathActivity)
}

// getJSON goes through the retrying client; reads are safe to repeat.
func (c *Client) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.reads.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(path, metrics.StatusClass(0)).Inc()
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer closeBody(resp)
	metrics.BackendRequests.WithLabelValues(path, metrics.StatusClass(resp.StatusCode)).Inc()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return raw, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &APIError{Status: resp.StatusCode, Message: errorMessage(httpclient.ReadBody(resp, maxErrorBody))}
}

// errorMessage pulls "error" or "message" out of a JSON error body, or
// falls back to the raw text.
func errorMessage(body string) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(body)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Debug().Err(err).Msg("backend: failed to close response body")
	}
}
