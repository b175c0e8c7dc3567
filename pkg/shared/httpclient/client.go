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

// Package httpclient is the HTTP client shared by the auth flow and the
// backend client: bounded per-request timeouts, optional bearer auth, and
// transport failures marked with ErrNetwork so callers can tell "couldn't
// reach the server" apart from "the server said no".
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

// ErrNetwork wraps every failure to get a response at all, timeouts
// included.
var ErrNetwork = errors.New("network error")

// TokenFunc supplies a bearer token per request. An empty token means the
// request goes out unauthenticated.
type TokenFunc func(ctx context.Context) (string, error)

// DefaultTransport is pooled and has sane dial and handshake limits.
var DefaultTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout: 10 * time.Second,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 4,
	IdleConnTimeout:     90 * time.Second,
}

// Transport adds the bearer header, bounds each request by Timeout, and
// wraps transport errors with ErrNetwork.
type Transport struct {
	Base    http.RoundTripper
	Token   TokenFunc
	Timeout time.Duration
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return DefaultTransport
	}
	return t.Base
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	cancel := context.CancelFunc(func() {})
	if t.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
	}

	out := req.Clone(ctx)
	if t.Token != nil && out.Header.Get("Authorization") == "" {
		token, err := t.Token(ctx)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to read bearer token: %w", err)
		}
		if token != "" {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	// the deadline has to outlive RoundTrip until the body is consumed
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err //nolint:wrapcheck // body close errors pass through
}

type Client struct {
	*http.Client
}

// NewClient returns a client whose requests time out after timeout and
// carry a bearer token from token, if non-nil.
func NewClient(timeout time.Duration, token TokenFunc) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Client: &http.Client{
			Transport: &Transport{
				Base:    DefaultTransport,
				Token:   token,
				Timeout: timeout,
			},
		},
	}
}

// WithBase swaps the underlying transport, keeping timeout and auth.
func (c *Client) WithBase(base http.RoundTripper) *Client {
	t, ok := c.Transport.(*Transport)
	if !ok {
		return &Client{Client: &http.Client{Transport: base}}
	}
	return &Client{Client: &http.Client{Transport: &Transport{
		Base:    base,
		Token:   t.Token,
		Timeout: t.Timeout,
	}}}
}

// ReadBody reads at most limit bytes of a response body, for error
// messages.
func ReadBody(resp *http.Response, limit int64) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return ""
	}
	return string(data)
}
