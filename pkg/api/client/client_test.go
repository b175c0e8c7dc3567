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

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers each request with reply, after first sending extra
// messages the client has to skip over.
func fakeServer(t *testing.T, reply func(req models.RequestObject) any, extra ...string) *Client {
	t.Helper()
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc(config.APIPath, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		for _, msg := range extra {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			var req models.RequestObject
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := reply(req)
			if resp == nil {
				continue
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(strings.TrimPrefix(srv.URL, "http://"))
}

func TestCall_ReturnsResult(t *testing.T) {
	t.Parallel()

	reqs := make(chan models.RequestObject, 1)
	c := fakeServer(t, func(req models.RequestObject) any {
		reqs <- req
		return models.ResponseObject{JSONRPC: "2.0", ID: *req.ID, Result: map[string]bool{"success": true}}
	}, `{"jsonrpc":"2.0","method":"tracking-started"}`, `{"jsonrpc":"2.0","id":"other","result":1}`)

	resp, err := c.Call(context.Background(), models.MethodStartTracking, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, resp)
	got := <-reqs
	assert.Equal(t, models.MethodStartTracking, got.Method)
	assert.Equal(t, "2.0", got.JSONRPC)
	assert.Empty(t, got.Params)
}

func TestCall_PassesParams(t *testing.T) {
	t.Parallel()

	params := make(chan json.RawMessage, 1)
	c := fakeServer(t, func(req models.RequestObject) any {
		params <- req.Params
		return models.ResponseObject{JSONRPC: "2.0", ID: *req.ID, Result: nil}
	})

	resp, err := c.Call(context.Background(), models.MethodGetHistory, `{"limit":5}`)
	require.NoError(t, err)
	assert.Equal(t, "null", resp)
	assert.JSONEq(t, `{"limit":5}`, string(<-params))
}

func TestCall_RPCError(t *testing.T) {
	t.Parallel()

	c := fakeServer(t, func(req models.RequestObject) any {
		return models.ResponseErrorObject{
			JSONRPC: "2.0",
			ID:      *req.ID,
			Error:   &models.ErrorObject{Code: -32601, Message: "Method not found"},
		}
	})

	_, err := c.Call(context.Background(), "nope", "")
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
	assert.Equal(t, "Method not found (code -32601)", rpcErr.Error())
}

func TestCall_InvalidParams(t *testing.T) {
	t.Parallel()

	c := New("127.0.0.1:1")
	_, err := c.Call(context.Background(), models.MethodVersion, "{not json")
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestCall_Timeout(t *testing.T) {
	t.Parallel()

	c := fakeServer(t, func(models.RequestObject) any { return nil })
	c.timeout = 50 * time.Millisecond

	_, err := c.Call(context.Background(), models.MethodVersion, "")
	require.ErrorIs(t, err, ErrRequestTimeout)
}

func TestCall_Cancelled(t *testing.T) {
	t.Parallel()

	c := fakeServer(t, func(models.RequestObject) any { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	_, err := c.Call(ctx, models.MethodVersion, "")
	require.ErrorIs(t, err, ErrRequestCancelled)
}

func TestCall_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	_, err := New(host).Call(context.Background(), models.MethodVersion, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestWaitNotification(t *testing.T) {
	t.Parallel()

	c := fakeServer(t, func(models.RequestObject) any { return nil },
		`{"jsonrpc":"2.0","method":"tracking-started"}`,
		`{"jsonrpc":"2.0","method":"login-successful","params":{"user":{"id":"1","username":"ana","avatar":""}}}`,
	)

	params, err := c.WaitNotification(context.Background(), 5*time.Second, models.NotificationLoginSuccessful)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":{"id":"1","username":"ana","avatar":""}}`, params)
}

func TestWaitNotification_Timeout(t *testing.T) {
	t.Parallel()

	c := fakeServer(t, func(models.RequestObject) any { return nil },
		`{"jsonrpc":"2.0","method":"tracking-started"}`,
	)

	_, err := c.WaitNotification(context.Background(), 50*time.Millisecond, models.NotificationLoginFailed)
	require.ErrorIs(t, err, ErrRequestTimeout)
}

func TestCallAndWait_ReturnsNotification(t *testing.T) {
	t.Parallel()

	c := fakeServer(t, func(req models.RequestObject) any {
		return models.ResponseObject{JSONRPC: "2.0", ID: *req.ID, Result: map[string]bool{"success": true}}
	},
		`{"jsonrpc":"2.0","method":"tracking-started"}`,
		`{"jsonrpc":"2.0","method":"login-failed","params":{"error":"Login cancelled"}}`,
	)

	n, err := c.CallAndWait(context.Background(), models.MethodStartOAuthLogin, "", 5*time.Second,
		models.NotificationLoginSuccessful, models.NotificationLoginFailed)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationLoginFailed, n.Method)
	assert.JSONEq(t, `{"error":"Login cancelled"}`, string(n.Params))
}

func TestCallAndWait_ErrorResponseEndsWait(t *testing.T) {
	t.Parallel()

	c := fakeServer(t, func(req models.RequestObject) any {
		return models.ResponseErrorObject{
			JSONRPC: "2.0",
			ID:      *req.ID,
			Error:   &models.ErrorObject{Code: -32000, Message: "login is not configured"},
		}
	})

	_, err := c.CallAndWait(context.Background(), models.MethodStartOAuthLogin, "", 5*time.Second,
		models.NotificationLoginSuccessful)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "login is not configured", rpcErr.Message)
}
