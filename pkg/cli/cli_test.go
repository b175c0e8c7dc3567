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

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/client"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/database/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Call(ctx context.Context, method, params string) (string, error) {
	args := m.Called(ctx, method, params)
	return args.String(0), args.Error(1) //nolint:wrapcheck // mock
}

func (m *mockAPI) CallAndWait(
	ctx context.Context,
	method, params string,
	timeout time.Duration,
	notifications ...string,
) (models.Notification, error) {
	args := m.Called(ctx, method, params, timeout, notifications)
	n, _ := args.Get(0).(models.Notification)
	return n, args.Error(1) //nolint:wrapcheck // mock
}

func (m *mockAPI) WaitNotification(ctx context.Context, timeout time.Duration, method string) (string, error) {
	args := m.Called(ctx, timeout, method)
	return args.String(0), args.Error(1) //nolint:wrapcheck // mock
}

var _ client.APIClient = (*mockAPI)(nil)

type harness struct {
	api    *mockAPI
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	env    env
}

func newHarness(t *testing.T, passed ...string) *harness {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	h := &harness{
		api:    &mockAPI{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.env = env{
		api:    h.api,
		cfg:    cfg,
		stdout: h.stdout,
		stderr: h.stderr,
		passed: func(name string) bool {
			for _, p := range passed {
				if p == name {
					return true
				}
			}
			return false
		},
		history: filepath.Join(t.TempDir(), "history.db"),
	}
	return h
}

func newFlags() *Flags {
	return &Flags{
		API:           new(string),
		ExportHistory: new(string),
		Version:       new(bool),
		Login:         new(bool),
		Logout:        new(bool),
	}
}

func TestRun_NoFlags(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, handled := newFlags().run(context.Background(), h.env)
	assert.False(t, handled)
	h.api.AssertExpectations(t)
}

func TestRun_API(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		method string
		params string
	}{
		{name: "method only", value: "getCurrentSession", method: "getCurrentSession"},
		{name: "with params", value: `getHistory:{"limit":5}`, method: "getHistory", params: `{"limit":5}`},
		{name: "params with colons", value: `logSession:{"game":"a:b"}`, method: "logSession", params: `{"game":"a:b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, "api")
			h.api.On("Call", mock.Anything, tt.method, tt.params).Return(`{"ok":true}`, nil)

			f := newFlags()
			*f.API = tt.value
			code, handled := f.run(context.Background(), h.env)

			assert.True(t, handled)
			assert.Equal(t, 0, code)
			assert.Equal(t, "{\"ok\":true}\n", h.stdout.String())
			h.api.AssertExpectations(t)
		})
	}
}

func TestRun_APIErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "api")
	code, _ := newFlags().run(context.Background(), h.env)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "api flag requires a value")

	h = newHarness(t, "api")
	h.api.On("Call", mock.Anything, "version", "").Return("", errors.New("connection refused"))
	f := newFlags()
	*f.API = "version"
	code, _ = f.run(context.Background(), h.env)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "connection refused")
}

func TestRun_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		name       string
		wantStdout string
		wantStderr string
		n          models.Notification
		wantCode   int
	}{
		{
			name: "success",
			n: models.Notification{
				Method: models.NotificationLoginSuccessful,
				Params: []byte(`{"user":{"id":"1","username":"ana","avatar":""}}`),
			},
			wantStdout: "Logged in as ana",
		},
		{
			name: "failed",
			n: models.Notification{
				Method: models.NotificationLoginFailed,
				Params: []byte(`{"error":"Login timed out"}`),
			},
			wantCode:   1,
			wantStderr: "Error: Login timed out",
		},
		{
			name:       "service unreachable",
			err:        errors.New("failed to connect"),
			wantCode:   1,
			wantStderr: "failed to connect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			h.api.On("CallAndWait", mock.Anything, models.MethodStartOAuthLogin, "",
				h.env.cfg.LoginTimeout()+loginGrace,
				[]string{models.NotificationLoginSuccessful, models.NotificationLoginFailed},
			).Return(tt.n, tt.err)

			f := newFlags()
			*f.Login = true
			code, handled := f.run(context.Background(), h.env)

			assert.True(t, handled)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, h.stdout.String(), tt.wantStdout)
			assert.Contains(t, h.stderr.String(), tt.wantStderr)
			h.api.AssertExpectations(t)
		})
	}
}

func TestRun_Logout(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.On("Call", mock.Anything, models.MethodLogout, "").Return(`{"success":true}`, nil)

	f := newFlags()
	*f.Logout = true
	code, handled := f.run(context.Background(), h.env)

	assert.True(t, handled)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Logged out\n", h.stdout.String())
}

func TestRun_ExportHistory(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "export-history")
	ctx := context.Background()

	db, err := history.Open(ctx, h.env.history)
	require.NoError(t, err)
	start := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	_, err = db.Add(ctx, history.Entry{
		Game:      "hades.exe",
		StartTime: start,
		EndTime:   start.Add(96 * time.Minute),
		Hours:     1.6,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out := filepath.Join(t.TempDir(), "sessions.csv")
	f := newFlags()
	*f.ExportHistory = out
	code, handled := f.run(ctx, h.env)

	require.True(t, handled)
	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, "Exported 1 sessions to "+out+"\n", h.stdout.String())

	data, err := os.ReadFile(out) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t,
		"game,started_at,ended_at,hours\nhades.exe,2025-03-01T18:00:00Z,2025-03-01T19:36:00Z,1.6\n",
		string(data))
}

func TestRun_ExportHistoryNeedsPath(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "export-history")

	code, handled := newFlags().run(context.Background(), h.env)
	assert.True(t, handled)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "requires a file path")
}

func TestServiceRunning(t *testing.T) {
	t.Parallel()

	up := &mockAPI{}
	up.On("Call", mock.Anything, models.MethodVersion, "").Return(`{}`, nil)
	assert.True(t, serviceRunning(up))

	down := &mockAPI{}
	down.On("Call", mock.Anything, models.MethodVersion, "").Return("", errors.New("refused"))
	assert.False(t, serviceRunning(down))
}
