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

package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heyclandestine/gamercred/pkg/backend"
	"github.com/jonboulle/clockwork"
	"pgregory.net/rapid"
)

type acceptingBackend struct{}

func (acceptingBackend) LogGame(context.Context, backend.LogGameRequest) error { return nil }

// trackerModel is the expected tracker state, kept in step with the real
// tracker by each action.
type trackerModel struct {
	game     string
	played   time.Duration
	tracking bool
	paused   bool
}

func (m *trackerModel) state() State {
	switch {
	case !m.tracking:
		return StateIdle
	case m.game == "":
		return StateActiveNoGame
	case m.paused:
		return StatePaused
	default:
		return StateActiveInGame
	}
}

func TestTracker_RandomOperations(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		clock := clockwork.NewFakeClockAt(epoch)
		tr := New(Args{Clock: clock, Backend: acceptingBackend{}})
		m := &trackerModel{}

		games := rapid.SampledFrom([]string{"valorant.exe", "hades.exe", "cs2.exe"})
		others := rapid.SampledFrom([]string{"notepad.exe", "chrome.exe", "explorer.exe"})

		rt.Repeat(map[string]func(*rapid.T){
			"start": func(*rapid.T) {
				if tr.Start() != !m.tracking {
					rt.Fatalf("Start returned the wrong value while tracking=%v", m.tracking)
				}
				if !m.tracking {
					*m = trackerModel{tracking: true}
				}
			},
			"stop": func(*rapid.T) {
				tr.Stop()
				*m = trackerModel{}
			},
			"poll game": func(rt *rapid.T) {
				g := games.Draw(rt, "game")
				tr.OnPoll(PollSample{ProcessName: g, Timestamp: clock.Now()})
				if !m.tracking || m.paused {
					return
				}
				if m.game == "" {
					m.played = 0
				}
				m.game = g
			},
			"poll other": func(rt *rapid.T) {
				tr.OnPoll(PollSample{ProcessName: others.Draw(rt, "other"), Timestamp: clock.Now()})
				if m.tracking && !m.paused {
					m.game = ""
					m.played = 0
				}
			},
			"pause": func(*rapid.T) {
				err := tr.Pause()
				if !m.tracking || m.game == "" {
					if !errors.Is(err, ErrNoActiveSession) {
						rt.Fatalf("Pause without a session: got %v", err)
					}
					return
				}
				if err != nil {
					rt.Fatalf("Pause: %v", err)
				}
				m.paused = true
			},
			"resume": func(*rapid.T) {
				err := tr.Resume()
				if !m.tracking || m.game == "" {
					if !errors.Is(err, ErrNoActiveSession) {
						rt.Fatalf("Resume without a session: got %v", err)
					}
					return
				}
				if err != nil {
					rt.Fatalf("Resume: %v", err)
				}
				m.paused = false
			},
			"advance": func(rt *rapid.T) {
				d := time.Duration(rapid.IntRange(1, 3600).Draw(rt, "seconds")) * time.Second
				clock.Advance(d)
				if m.game != "" && !m.paused {
					m.played += d
				}
			},
			"log": func(*rapid.T) {
				res, err := tr.Log(context.Background(), "")
				switch {
				case m.game == "":
					if !errors.Is(err, ErrNoActiveSession) {
						rt.Fatalf("Log without a session: got %v", err)
					}
				case RoundHours(m.played) < MinLoggableHours:
					if !errors.Is(err, ErrSessionTooShort) {
						rt.Fatalf("Log of %v: got %v, want too short", m.played, err)
					}
				default:
					if err != nil {
						rt.Fatalf("Log of %v: %v", m.played, err)
					}
					if res.Hours != RoundHours(m.played) || res.Game != m.game {
						rt.Fatalf("Log result %+v, want %s for %v", res, m.game, m.played)
					}
					*m = trackerModel{}
				}
			},
			"": func(rt *rapid.T) {
				snap := tr.Snapshot()
				if snap.State != m.state() {
					rt.Fatalf("state %v, want %v", snap.State, m.state())
				}
				if snap.Tracking != m.tracking {
					rt.Fatalf("tracking %v, want %v", snap.Tracking, m.tracking)
				}
				if m.game == "" {
					if snap.Session != nil {
						rt.Fatalf("unexpected session %+v", snap.Session)
					}
					return
				}
				if snap.Session == nil {
					rt.Fatalf("missing session for %s", m.game)
				}
				if snap.Session.Game != m.game || snap.Session.Paused != m.paused {
					rt.Fatalf("session %+v, want game %s paused %v", snap.Session, m.game, m.paused)
				}
				if got := snap.Session.Elapsed(clock.Now()); got != m.played {
					rt.Fatalf("elapsed %v, want %v", got, m.played)
				}
			},
		})
	})
}
