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

package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/heyclandestine/gamercred/pkg/api/client"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/notifications"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/service/tracker"
	"github.com/heyclandestine/gamercred/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSettings struct {
	saved *models.UserSettings
}

func (m *memSettings) Settings(context.Context) (models.UserSettings, error) {
	if m.saved == nil {
		return models.DefaultUserSettings, nil
	}
	return *m.saved, nil
}

func (m *memSettings) SaveSettings(_ context.Context, s models.UserSettings) error {
	m.saved = &s
	return nil
}

type fixture struct {
	server  *Server
	http    *httptest.Server
	notifs  chan models.Notification
	tracker *tracker.Tracker
	clock   *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	pl := mocks.NewMockPlatform()
	pl.SetupBasicMock(t.TempDir())

	notifs := make(chan models.Notification, 16)
	clock := clockwork.NewFakeClock()
	tr := tracker.New(tracker.Args{Clock: clock, Sink: notifications.ChanSink(notifs)})

	s := NewServer(ServerArgs{
		Platform:      pl,
		Config:        cfg,
		Settings:      &memSettings{},
		Tracker:       tr,
		Notifications: notifs,
		Clock:         clock,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &fixture{server: s, http: srv, notifs: notifs, tracker: tr, clock: clock}
}

func (f *fixture) host() string {
	return strings.TrimPrefix(f.http.URL, "http://")
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+f.host()+config.APIPath, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) string {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestServer_Ping(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	conn := f.dial(t)

	assert.Equal(t, "pong", roundTrip(t, conn, "ping"))
}

func TestServer_ProtocolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "not json",
			msg:  "{nope",
			want: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`,
		},
		{
			name: "wrong version",
			msg:  `{"jsonrpc":"1.0","id":1,"method":"version"}`,
			want: `{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"Invalid Request"}}`,
		},
		{
			name: "object id",
			msg:  `{"jsonrpc":"2.0","id":{"a":1},"method":"version"}`,
			want: `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid Request"}}`,
		},
		{
			name: "unknown method",
			msg:  `{"jsonrpc":"2.0","id":"abc","method":"launchMissiles"}`,
			want: `{"jsonrpc":"2.0","id":"abc","error":{"code":-32601,"message":"Method not found"}}`,
		},
		{
			name: "missing params",
			msg:  `{"jsonrpc":"2.0","id":2,"method":"saveSettings"}`,
			want: `{"jsonrpc":"2.0","id":2,"error":{"code":-32602,"message":"missing params"}}`,
		},
		{
			name: "invalid params",
			msg:  `{"jsonrpc":"2.0","id":3,"method":"saveSettings","params":{"pollIntervalSeconds":9999}}`,
			want: `{"jsonrpc":"2.0","id":3,"error":{"code":-32602,"message":"pollintervalseconds must be at most 300"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			conn := f.dial(t)
			assert.JSONEq(t, tt.want, roundTrip(t, conn, tt.msg))
		})
	}
}

func TestServer_IgnoresClientNotifications(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	conn := f.dial(t)

	// no id: no response, so the next reply belongs to the ping
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","method":"startTracking"}`)))
	assert.Equal(t, "pong", roundTrip(t, conn, "ping"))
	assert.Equal(t, tracker.StateIdle, f.tracker.State())
}

func TestServer_CallWithClient(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	c := client.New(f.host())
	ctx := context.Background()

	resp, err := c.Call(ctx, models.MethodVersion, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"`+config.AppVersion+`","platform":"mock-platform"}`, resp)

	resp, err = c.Call(ctx, models.MethodStartTracking, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, resp)

	resp, err = c.Call(ctx, models.MethodGetCurrentSession, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"session":null,"state":"active","tracking":true}`, resp)

	resp, err = c.Call(ctx, models.MethodPauseTracking, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"no active session"}`, resp)

	_, err = c.Call(ctx, models.MethodSaveSettings, `{"pollIntervalSeconds":-4}`)
	var rpcErr *client.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, JSONRPCErrorInvalidParams.Code, rpcErr.Code)

	_, err = c.Call(ctx, models.MethodVersion, "{bad")
	require.ErrorIs(t, err, client.ErrInvalidParams)
}

func TestServer_BroadcastsNotifications(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.server.Broadcast(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn := f.dial(t)
	require.Eventually(t, func() bool { return f.server.melody.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	f.tracker.Start()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"tracking-started"}`, string(data))

	f.tracker.OnPoll(tracker.PollSample{ProcessName: "hades.exe", Timestamp: f.clock.Now()})
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)

	var n models.NotificationObject
	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, models.NotificationGameDetected, n.Method)
	var payload models.GameDetectedPayload
	require.NoError(t, json.Unmarshal(n.Params, &payload))
	assert.Equal(t, "hades.exe", payload.Game)
}

func TestServer_WaitNotification(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.server.Broadcast(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	c := client.New(f.host())
	result := make(chan string, 1)
	go func() {
		params, err := c.WaitNotification(context.Background(), 5*time.Second, models.NotificationLoginFailed)
		if err != nil {
			params = "error: " + err.Error()
		}
		result <- params
	}()

	require.Eventually(t, func() bool { return f.server.melody.Len() == 1 }, 5*time.Second, 10*time.Millisecond)
	notifications.TrackingStarted(notifications.ChanSink(f.notifs))
	notifications.LoginFailed(notifications.ChanSink(f.notifs), "Login cancelled")

	assert.JSONEq(t, `{"error":"Login cancelled"}`, <-result)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.Get(f.http.URL + "/health") //nolint:noctx // test
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.Get(f.http.URL + "/metrics") //nolint:noctx // test
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	header := http.Header{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws://"+f.host()+config.APIPath, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginAllowed(t *testing.T) {
	t.Parallel()

	extra := []string{"app://gamercred"}
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://localhost:5173", want: true},
		{origin: "http://127.0.0.1:3000", want: true},
		{origin: "http://[::1]:3000", want: true},
		{origin: "app://gamercred", want: true},
		{origin: "https://evil.example", want: false},
		{origin: "http://localhost.evil.example", want: false},
		{origin: "file://", want: false},
		{origin: "::::", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, originAllowed(tt.origin, extra), tt.origin)
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.server.Serve(ctx, ln) }()

	c := client.New(ln.Addr().String())
	require.Eventually(t, func() bool {
		_, err := c.Call(context.Background(), models.MethodVersion, "")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
