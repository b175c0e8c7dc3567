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

// Package client is a minimal JSON-RPC client for the companion's local
// websocket API, used by the CLI flags.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

// RPCError is an error object returned by the server.
type RPCError struct {
	Message string
	Code    int
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

type Client struct {
	dialer  *websocket.Dialer
	host    string
	timeout time.Duration
}

// New returns a client for the API listening on host (host:port).
func New(host string) *Client {
	return &Client{
		host:    host,
		dialer:  websocket.DefaultDialer,
		timeout: config.APIRequestTimeout,
	}
}

// NewLocal returns a client for this machine's companion service.
func NewLocal(cfg *config.Instance) *Client {
	return New(net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.APIPort())))
}

func (c *Client) url() string {
	u := url.URL{Scheme: "ws", Host: c.host, Path: config.APIPath}
	return u.String()
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url(), err)
	}
	return conn, nil
}

// readUntil reads messages until match returns true for one, the
// connection closes, or the deadline passes. The connection is closed on
// return.
func (c *Client) readUntil(
	ctx context.Context,
	conn *websocket.Conn,
	timeout time.Duration,
	match func([]byte) bool,
) error {
	done := make(chan struct{})
	found := false
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("client: read loop ended")
				return
			}
			if match(msg) {
				found = true
				return
			}
		}
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	var err error
	select {
	case <-done:
	case <-timer:
		err = ErrRequestTimeout
	case <-ctx.Done():
		err = ErrRequestCancelled
	}

	if cerr := conn.Close(); cerr != nil {
		log.Debug().Err(cerr).Msg("client: error closing websocket")
	}
	<-done

	if err != nil {
		return err
	}
	if !found {
		return ErrRequestTimeout
	}
	return nil
}

type response struct {
	Error  *models.ErrorObject `json:"error"`
	ID     models.RPCID        `json:"id"`
	Result json.RawMessage     `json:"result"`
}

func newRequest(method, params string) (models.RequestObject, error) {
	id := models.RPCID{RawMessage: json.RawMessage(strconv.Quote(uuid.NewString()))}
	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	if params != "" {
		if !json.Valid([]byte(params)) {
			return req, ErrInvalidParams
		}
		req.Params = json.RawMessage(params)
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, req models.RequestObject) (*websocket.Conn, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(req); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return conn, nil
}

// Call sends one request and returns the raw JSON result.
func (c *Client) Call(ctx context.Context, method, params string) (string, error) {
	req, err := newRequest(method, params)
	if err != nil {
		return "", err
	}
	conn, err := c.send(ctx, req)
	if err != nil {
		return "", err
	}

	var resp response
	err = c.readUntil(ctx, conn, c.timeout, func(msg []byte) bool {
		var m response
		if json.Unmarshal(msg, &m) != nil {
			return false
		}
		if m.ID.String() != req.ID.String() {
			return false
		}
		resp = m
		return true
	})
	if err != nil {
		return "", err
	}

	if resp.Error != nil {
		return "", &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	return string(resp.Result), nil
}

// CallAndWait sends a request and then waits, on the same connection, for
// the first notification named in notifications. Listening starts before
// the request goes out, so a notification the request triggers can't be
// missed. An error response to the request ends the wait.
func (c *Client) CallAndWait(
	ctx context.Context,
	method, params string,
	timeout time.Duration,
	notifications ...string,
) (models.Notification, error) {
	var got models.Notification
	req, err := newRequest(method, params)
	if err != nil {
		return got, err
	}
	conn, err := c.send(ctx, req)
	if err != nil {
		return got, err
	}

	var rpcErr *RPCError
	err = c.readUntil(ctx, conn, timeout, func(msg []byte) bool {
		var m struct {
			response
			Method string `json:"method"`
		}
		if json.Unmarshal(msg, &m) != nil {
			return false
		}
		if m.Method == "" {
			if m.Error != nil && m.ID.String() == req.ID.String() {
				rpcErr = &RPCError{Code: m.Error.Code, Message: m.Error.Message}
				return true
			}
			return false
		}
		if !slices.Contains(notifications, m.Method) {
			return false
		}
		var n models.NotificationObject
		if json.Unmarshal(msg, &n) != nil {
			return false
		}
		got = models.Notification{Method: n.Method, Params: n.Params}
		return true
	})
	if err != nil {
		return got, err
	}
	if rpcErr != nil {
		return got, rpcErr
	}
	return got, nil
}

// WaitNotification blocks until the server pushes a notification named
// method and returns its params. A zero timeout uses the request timeout;
// a negative one waits until ctx is done.
func (c *Client) WaitNotification(ctx context.Context, timeout time.Duration, method string) (string, error) {
	if timeout == 0 {
		timeout = c.timeout
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}

	var params json.RawMessage
	err = c.readUntil(ctx, conn, timeout, func(msg []byte) bool {
		var m models.NotificationObject
		if json.Unmarshal(msg, &m) != nil || m.Method != method {
			return false
		}
		params = m.Params
		return true
	})
	if err != nil {
		return "", err
	}
	return string(params), nil
}
