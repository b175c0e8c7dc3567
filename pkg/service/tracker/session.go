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
	"math"
	"time"
)

// State is the tracker's lifecycle position. It is derived from the
// tracking flag and the current session rather than stored.
type State int

const (
	StateIdle State = iota
	StateActiveNoGame
	StateActiveInGame
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActiveNoGame:
		return "active"
	case StateActiveInGame:
		return "in_game"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MinLoggableHours is the shortest session the backend accepts, after
// rounding.
const MinLoggableHours = 0.1

// Session is one contiguous play session. StartTime moves forward on
// resume by the length of the pause, so Now - StartTime is always the
// time actually played.
type Session struct {
	StartTime      time.Time
	PauseStartedAt time.Time
	Game           string
	Paused         bool
}

// Elapsed is the time played as of now, frozen while paused.
func (s *Session) Elapsed(now time.Time) time.Duration {
	end := now
	if s.Paused {
		end = s.PauseStartedAt
	}
	d := end.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// RoundHours converts a duration to hours rounded to one decimal place.
func RoundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*10) / 10
}

// PollSample is one observation of the foreground process.
type PollSample struct {
	Timestamp   time.Time
	ProcessName string
}

// Snapshot is a copy of the tracker state for readers outside the lock.
type Snapshot struct {
	Session  *Session
	State    State
	Tracking bool
}
