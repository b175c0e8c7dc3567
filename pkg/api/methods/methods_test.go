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

package methods

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/models/requests"
	"github.com/heyclandestine/gamercred/pkg/api/validation"
	"github.com/heyclandestine/gamercred/pkg/backend"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/database/history"
	"github.com/heyclandestine/gamercred/pkg/service/auth"
	"github.com/heyclandestine/gamercred/pkg/service/tracker"
	"github.com/heyclandestine/gamercred/pkg/shared/httpclient"
	"github.com/heyclandestine/gamercred/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

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

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) StartLogin(ctx context.Context) error {
	return m.Called(ctx).Error(0) //nolint:wrapcheck // mock
}

func (m *mockAuth) StoredToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1) //nolint:wrapcheck // mock
}

func (m *mockAuth) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0) //nolint:wrapcheck // mock
}

func (m *mockAuth) CheckLoginStatus(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1) //nolint:wrapcheck // mock
}

type stubBackend struct {
	err  error
	data json.RawMessage
}

func (s *stubBackend) Stats(context.Context) (json.RawMessage, error)       { return s.data, s.err }
func (s *stubBackend) Leaderboard(context.Context) (json.RawMessage, error) { return s.data, s.err }
func (s *stubBackend) Activity(context.Context) (json.RawMessage, error)    { return s.data, s.err }

type stubHistory struct {
	entries   []history.Entry
	lastLimit int
}

func (s *stubHistory) Recent(_ context.Context, limit int) ([]history.Entry, error) {
	s.lastLimit = limit
	return s.entries, nil
}

type logBackend struct {
	err  error
	reqs []backend.LogGameRequest
}

func (b *logBackend) LogGame(_ context.Context, req backend.LogGameRequest) error {
	b.reqs = append(b.reqs, req)
	return b.err
}

type fixture struct {
	clock   *clockwork.FakeClock
	auth    *mockAuth
	logs    *logBackend
	env     requests.RequestEnv
	tracker *tracker.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock: clockwork.NewFakeClockAt(epoch),
		auth:  &mockAuth{},
		logs:  &logBackend{},
	}
	f.tracker = tracker.New(tracker.Args{
		Clock:   f.clock,
		Sink:    mocks.NewRecordingSink(),
		Backend: f.logs,
	})
	pl := mocks.NewMockPlatform()
	pl.SetupBasicMock(t.TempDir())
	f.env = requests.RequestEnv{
		Context:  context.Background(),
		Settings: &memSettings{},
		Tracker:  f.tracker,
		Auth:     f.auth,
		Backend:  &stubBackend{data: json.RawMessage(`{"totalHours":12.5}`)},
		History:  &stubHistory{},
		Platform: pl,
	}
	return f
}

func (f *fixture) withParams(params string) requests.RequestEnv {
	env := f.env
	env.Params = json.RawMessage(params)
	return env
}

func TestMap_CoversEveryMethod(t *testing.T) {
	t.Parallel()

	for _, m := range []string{
		models.MethodGetSettings, models.MethodSaveSettings, models.MethodGetCurrentSession,
		models.MethodStartTracking, models.MethodStopTracking, models.MethodPauseTracking,
		models.MethodResumeTracking, models.MethodLogSession, models.MethodGetHistory,
		models.MethodStartOAuthLogin, models.MethodGetStoredToken, models.MethodLogout,
		models.MethodCheckLoginStatus, models.MethodGetStats, models.MethodGetLeaderboard,
		models.MethodGetActivity, models.MethodVersion,
	} {
		assert.Contains(t, Map, m)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	got, err := HandleGetSettings(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserSettings, got)

	resp, err := HandleSaveSettings(f.withParams(`{"autoStartTracking":true,"pollIntervalSeconds":15}`))
	require.NoError(t, err)
	assert.Equal(t, models.SuccessResponse{Success: true}, resp)

	got, err = HandleGetSettings(f.env)
	require.NoError(t, err)
	settings, ok := got.(models.UserSettings)
	require.True(t, ok)
	assert.True(t, settings.AutoStartTracking)
	assert.Equal(t, 15, settings.PollIntervalSeconds)
}

func TestSaveSettings_Invalid(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := HandleSaveSettings(f.withParams(`{"pollIntervalSeconds":0.5}`))
	require.ErrorIs(t, err, validation.ErrInvalidParams)

	_, err = HandleSaveSettings(f.withParams(`{"pollIntervalSeconds":1000}`))
	var cerr *ClientError
	require.ErrorAs(t, err, &cerr)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	_, err = HandleSaveSettings(f.env)
	require.ErrorIs(t, err, validation.ErrMissingParams)
}

func TestTracking_Lifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := HandleGetCurrentSession(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SessionResponse{State: "idle"}, resp)

	_, err = HandleStartTracking(f.env)
	require.NoError(t, err)
	f.tracker.OnPoll(tracker.PollSample{ProcessName: "eldenring.exe", Timestamp: f.clock.Now()})
	f.clock.Advance(90 * time.Second)

	resp, err = HandleGetCurrentSession(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SessionResponse{
		State:    "in_game",
		Tracking: true,
		Session: &models.ActiveSession{
			Game:           "eldenring.exe",
			StartTime:      epoch,
			ElapsedSeconds: 90,
		},
	}, resp)

	resp, err = HandlePauseTracking(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SuccessResponse{Success: true}, resp)
	assert.Equal(t, tracker.StatePaused, f.tracker.State())

	resp, err = HandleResumeTracking(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SuccessResponse{Success: true}, resp)

	_, err = HandleStopTracking(f.env)
	require.NoError(t, err)
	assert.Equal(t, tracker.StateIdle, f.tracker.State())
}

func TestPauseTracking_NoSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := HandlePauseTracking(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SuccessResponse{Success: false, Error: tracker.ErrNoActiveSession.Error()}, resp)
}

func TestLogSession(t *testing.T) {
	t.Parallel()

	t.Run("nothing to log", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		resp, err := HandleLogSession(f.env)
		require.NoError(t, err)
		assert.Equal(t, models.LogSessionResponse{Success: false, Error: "No active session to log"}, resp)
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.tracker.Start()
		f.tracker.OnPoll(tracker.PollSample{ProcessName: "cs2.exe", Timestamp: f.clock.Now()})
		f.clock.Advance(time.Minute)

		resp, err := HandleLogSession(f.env)
		require.NoError(t, err)
		logResp, ok := resp.(models.LogSessionResponse)
		require.True(t, ok)
		assert.False(t, logResp.Success)
		assert.Contains(t, logResp.Error, "0.1 hours")
		assert.Empty(t, f.logs.reqs)
	})

	t.Run("with override", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.tracker.Start()
		f.tracker.OnPoll(tracker.PollSample{ProcessName: "cs2.exe", Timestamp: f.clock.Now()})
		f.clock.Advance(2 * time.Hour)

		resp, err := HandleLogSession(f.withParams(`{"game":"Counter-Strike 2"}`))
		require.NoError(t, err)
		assert.Equal(t, models.LogSessionResponse{Success: true, Game: "Counter-Strike 2", Hours: 2}, resp)
		assert.Equal(t, []backend.LogGameRequest{{Game: "Counter-Strike 2", Hours: 2}}, f.logs.reqs)
		assert.Equal(t, tracker.StateIdle, f.tracker.State())
	})

	t.Run("not logged in", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.logs.err = backend.ErrNotLoggedIn
		f.tracker.Start()
		f.tracker.OnPoll(tracker.PollSample{ProcessName: "cs2.exe", Timestamp: f.clock.Now()})
		f.clock.Advance(time.Hour)

		resp, err := HandleLogSession(f.env)
		require.NoError(t, err)
		assert.Equal(t, models.LogSessionResponse{Success: false, Error: "Log in with Discord to save sessions"}, resp)
		assert.Equal(t, tracker.StateActiveInGame, f.tracker.State())
	})

	t.Run("invalid override", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := HandleLogSession(f.withParams(`{"game":""}`))
		require.Error(t, err)
	})
}

func TestGetHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	h := &stubHistory{entries: []history.Entry{{
		ID:        7,
		Game:      "hades.exe",
		StartTime: epoch,
		EndTime:   epoch.Add(time.Hour),
		Hours:     1,
	}}}
	f.env.History = h

	resp, err := HandleGetHistory(f.env)
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryLimit, h.lastLimit)
	assert.Equal(t, models.HistoryResponse{Entries: []models.HistoryEntry{{
		ID:        7,
		Game:      "hades.exe",
		StartTime: epoch,
		EndTime:   epoch.Add(time.Hour),
		Hours:     1,
	}}}, resp)

	_, err = HandleGetHistory(f.withParams(`{"limit":5}`))
	require.NoError(t, err)
	assert.Equal(t, 5, h.lastLimit)

	_, err = HandleGetHistory(f.withParams(`{"limit":0}`))
	require.Error(t, err)
}

func TestStartOAuthLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.auth.On("StartLogin", mock.Anything).Return(nil).Once()
	f.auth.On("StartLogin", mock.Anything).Return(auth.ErrLoginInProgress).Once()

	resp, err := HandleStartOAuthLogin(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SuccessResponse{Success: true}, resp)

	resp, err = HandleStartOAuthLogin(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SuccessResponse{Success: false, Error: auth.ErrLoginInProgress.Error()}, resp)
	f.auth.AssertExpectations(t)
}

func TestGetStoredToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.auth.On("StoredToken", mock.Anything).Return("", nil).Once()
	f.auth.On("StoredToken", mock.Anything).Return("tok", nil).Once()

	resp, err := HandleGetStoredToken(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.StoredTokenResponse{}, resp)

	resp, err = HandleGetStoredToken(f.env)
	require.NoError(t, err)
	tokResp, ok := resp.(models.StoredTokenResponse)
	require.True(t, ok)
	require.NotNil(t, tokResp.Token)
	assert.Equal(t, "tok", *tokResp.Token)
}

func TestLogoutAndStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := &models.User{ID: "42", Username: "player"}
	f.auth.On("Logout", mock.Anything).Return(nil)
	f.auth.On("CheckLoginStatus", mock.Anything).Return(user, nil).Once()
	f.auth.On("CheckLoginStatus", mock.Anything).Return(nil, nil).Once()
	f.auth.On("CheckLoginStatus", mock.Anything).Return(nil, errors.New("store closed")).Once()

	resp, err := HandleCheckLoginStatus(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.LoginStatusResponse{LoggedIn: true, User: user}, resp)

	resp, err = HandleLogout(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.SuccessResponse{Success: true}, resp)

	resp, err = HandleCheckLoginStatus(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.LoginStatusResponse{}, resp)

	resp, err = HandleCheckLoginStatus(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.LoginStatusResponse{}, resp)
}

func TestBackendReads(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, h := range []Handler{HandleGetStats, HandleGetLeaderboard, HandleGetActivity} {
		resp, err := h(f.env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"totalHours":12.5}`, string(resp.(json.RawMessage))) //nolint:forcetypeassert // test
	}

	f.env.Backend = &stubBackend{err: &backend.APIError{Status: 401, Message: "Unauthorized"}}
	_, err := HandleGetStats(f.env)
	var cerr *ClientError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "Unauthorized")

	f.env.Backend = &stubBackend{err: fmt.Errorf("%w: dial tcp: refused", httpclient.ErrNetwork)}
	_, err = HandleGetLeaderboard(f.env)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "could not reach the GamerCred server", cerr.Error())

	f.env.Backend = nil
	_, err = HandleGetActivity(f.env)
	require.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestVersion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := HandleVersion(f.env)
	require.NoError(t, err)
	assert.Equal(t, models.VersionResponse{Version: config.AppVersion, Platform: "mock-platform"}, resp)
}
