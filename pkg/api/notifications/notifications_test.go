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

package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanSink_NonBlocking(t *testing.T) {
	t.Parallel()

	// unbuffered with no reader: a blocking send would hang forever
	ns := make(chan models.Notification)

	done := make(chan struct{})
	go func() {
		TrackingStarted(ChanSink(ns))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("notify blocked on a full channel")
	}
}

func TestGameDetected_Payload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	GameDetected(ChanSink(ns), models.GameDetectedPayload{Game: "valorant.exe", StartTime: start})

	n := <-ns
	assert.Equal(t, models.NotificationGameDetected, n.Method)
	var got models.GameDetectedPayload
	require.NoError(t, json.Unmarshal(n.Params, &got))
	assert.Equal(t, "valorant.exe", got.Game)
	assert.True(t, start.Equal(got.StartTime))
}

func TestEventsWithoutPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		emit   func(Sink)
		method string
	}{
		{emit: GameStopped, method: models.NotificationGameStopped},
		{emit: TrackingStarted, method: models.NotificationTrackingStarted},
		{emit: TrackingStopped, method: models.NotificationTrackingStopped},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			ns := make(chan models.Notification, 1)
			tt.emit(ChanSink(ns))
			n := <-ns
			assert.Equal(t, tt.method, n.Method)
			assert.Nil(t, n.Params)
		})
	}
}

func TestLoginEvents(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 2)
	sink := ChanSink(ns)

	LoginSuccessful(sink, models.User{ID: "1", Username: "sam", Avatar: "a1"})
	LoginFailed(sink, "access_denied")

	ok := <-ns
	assert.Equal(t, models.NotificationLoginSuccessful, ok.Method)
	assert.JSONEq(t, `{"user":{"id":"1","username":"sam","avatar":"a1"}}`, string(ok.Params))

	failed := <-ns
	assert.Equal(t, models.NotificationLoginFailed, failed.Method)
	assert.JSONEq(t, `{"error":"access_denied"}`, string(failed.Params))
}

func TestSessionLogged(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	SessionLogged(ChanSink(ns), models.LogSessionPayload{Game: "cs2.exe", Hours: 1.5})

	n := <-ns
	assert.Equal(t, models.NotificationLogSession, n.Method)
	assert.JSONEq(t, `{"game":"cs2.exe","hours":1.5}`, string(n.Params))
}

func TestNilAndDiscardSinks(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		TrackingStarted(nil)
		TrackingStarted(Discard{})
	})
}
