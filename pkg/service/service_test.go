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

package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/client"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/database/store"
	"github.com/heyclandestine/gamercred/pkg/helpers"
	"github.com/heyclandestine/gamercred/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	pl  *mocks.MockPlatform
	cfg *config.Instance
	ln  net.Listener
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	pl := mocks.NewMockPlatform()
	pl.SetupBasicMock(root)
	pl.On("ActiveWindow", mock.Anything).Return("notepad.exe", nil).Maybe()

	cfg, err := config.NewConfig(helpers.ConfigDir(pl), config.BaseDefaults)
	require.NoError(t, err)

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	return &fixture{pl: pl, cfg: cfg, ln: ln}
}

func (f *fixture) start(t *testing.T) (stop func() error, done <-chan struct{}) {
	t.Helper()
	stop, done, err := start(f.pl, f.cfg, f.ln)
	require.NoError(t, err)
	return stop, done
}

func (f *fixture) call(t *testing.T, method string) string {
	t.Helper()
	c := client.New(f.ln.Addr().String())
	var resp string
	require.Eventually(t, func() bool {
		var err error
		resp, err = c.Call(context.Background(), method, "")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	return resp
}

func TestStart_ServesAPIAndStops(t *testing.T) {
	f := newFixture(t)
	stop, done := f.start(t)

	resp := f.call(t, models.MethodVersion)
	assert.JSONEq(t, `{"version":"`+config.AppVersion+`","platform":"mock-platform"}`, resp)

	resp = f.call(t, models.MethodCheckLoginStatus)
	assert.JSONEq(t, `{"loggedIn":false}`, resp)

	resp = f.call(t, models.MethodGetCurrentSession)
	assert.JSONEq(t, `{"session":null,"state":"idle","tracking":false}`, resp)

	require.NoError(t, stop())
	select {
	case <-done:
	default:
		t.Fatal("done not closed after stop")
	}
	f.pl.AssertCalled(t, "StartPre", f.cfg)
	f.pl.AssertCalled(t, "Stop")
}

func TestStart_AutoStartTracking(t *testing.T) {
	f := newFixture(t)

	st, err := store.Open(helpers.StorePath(f.pl))
	require.NoError(t, err)
	settings := models.DefaultUserSettings
	settings.AutoStartTracking = true
	settings.PollIntervalSeconds = 1
	require.NoError(t, st.SaveSettings(context.Background(), settings))
	require.NoError(t, st.Close())

	stop, _ := f.start(t)
	t.Cleanup(func() { _ = stop() })

	resp := f.call(t, models.MethodGetCurrentSession)
	assert.JSONEq(t, `{"session":null,"state":"active","tracking":true}`, resp)
}

func TestStart_StoreLockedFails(t *testing.T) {
	f := newFixture(t)
	t.Cleanup(func() { _ = f.ln.Close() })

	require.NoError(t, helpers.EnsureDirectories(f.pl))
	st, err := store.Open(helpers.StorePath(f.pl))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, _, err = start(f.pl, f.cfg, f.ln)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open store")
	f.pl.AssertCalled(t, "Stop")
}

func TestPollInterval(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pl := mocks.NewMockPlatform()
	pl.SetupBasicMock(root)

	cfg, err := config.NewConfig(helpers.ConfigDir(pl), config.BaseDefaults)
	require.NoError(t, err)
	cfg.SetPollInterval(7 * time.Second)

	st, err := store.Open(helpers.StorePath(pl))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	interval := pollInterval(cfg, st)
	assert.Equal(t, 7*time.Second, interval())

	settings := models.DefaultUserSettings
	settings.PollIntervalSeconds = 3
	require.NoError(t, st.SaveSettings(context.Background(), settings))
	assert.Equal(t, 3*time.Second, interval())

	settings.PollIntervalSeconds = 0
	require.NoError(t, st.SaveSettings(context.Background(), settings))
	assert.Equal(t, 7*time.Second, interval())
}
