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

// Package tracker turns foreground window samples into play sessions. It
// owns the idle/active/in-game/paused state machine, the poller that feeds
// it, and logging finished sessions to the backend.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/notifications"
	"github.com/heyclandestine/gamercred/pkg/backend"
	"github.com/heyclandestine/gamercred/pkg/database/history"
	"github.com/heyclandestine/gamercred/pkg/games"
	"github.com/heyclandestine/gamercred/pkg/helpers/syncutil"
	"github.com/heyclandestine/gamercred/pkg/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionTooShort = errors.New("session too short to log")
	ErrLogInProgress   = errors.New("session log already in progress")
)

// Backend receives finished sessions.
type Backend interface {
	LogGame(ctx context.Context, req backend.LogGameRequest) error
}

// HistoryRecorder keeps a local copy of logged sessions.
type HistoryRecorder interface {
	Add(ctx context.Context, e history.Entry) (int64, error)
}

type Args struct {
	Clock   clockwork.Clock
	Sink    notifications.Sink
	Backend Backend
	// History is optional.
	History HistoryRecorder
	// Source is optional; without one the tracker only reacts to OnPoll.
	Source WindowSource
	// Classify defaults to games.IsGame.
	Classify func(name string) bool
	// PollInterval is read on every Start so settings changes apply the
	// next time tracking starts.
	PollInterval func() time.Duration
}

type LogResult struct {
	Game  string
	Hours float64
}

type pollRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *pollRun) wait() {
	if r != nil {
		<-r.done
	}
}

// Tracker serializes every state transition behind one mutex. Events are
// published while the mutex is held, so subscribers see them in
// transition order and nothing is published for a poll that raced a Stop.
type Tracker struct {
	clock    clockwork.Clock
	sink     notifications.Sink
	backend  Backend
	history  HistoryRecorder
	poller   *Poller
	classify func(string) bool
	interval func() time.Duration
	session  *Session
	run      *pollRun
	gen      uint64
	mu       syncutil.Mutex
	tracking bool
	logging  bool
}

func New(args Args) *Tracker {
	t := &Tracker{
		clock:    args.Clock,
		sink:     args.Sink,
		backend:  args.Backend,
		history:  args.History,
		classify: args.Classify,
		interval: args.PollInterval,
	}
	if t.clock == nil {
		t.clock = clockwork.NewRealClock()
	}
	if t.sink == nil {
		t.sink = notifications.Discard{}
	}
	if t.classify == nil {
		t.classify = games.IsGame
	}
	if t.interval == nil {
		t.interval = func() time.Duration { return DefaultPollInterval }
	}
	if args.Source != nil {
		t.poller = NewPoller(t.clock, args.Source)
	}
	return t
}

// Start begins tracking. It returns false if tracking was already on.
func (t *Tracker) Start() bool {
	interval := t.interval()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		return false
	}
	t.tracking = true
	t.session = nil
	t.gen++

	if t.poller != nil {
		gen := t.gen
		ctx, cancel := context.WithCancel(context.Background())
		run := &pollRun{cancel: cancel, done: make(chan struct{})}
		t.run = run
		go func() {
			defer close(run.done)
			t.poller.Run(ctx, interval, func(s PollSample) {
				t.handlePoll(gen, s)
			})
		}()
	}

	log.Info().Dur("interval", interval).Msg("tracker: tracking started")
	notifications.TrackingStarted(t.sink)
	return true
}

// Stop ends tracking from any state and discards the current session
// without logging it. When Stop returns the poller has exited and no
// further poll events will be published.
func (t *Tracker) Stop() {
	t.mu.Lock()
	run := t.stopLocked()
	t.mu.Unlock()

	run.wait()
}

func (t *Tracker) stopLocked() *pollRun {
	run := t.run
	t.run = nil
	t.gen++
	if run != nil {
		run.cancel()
	}

	if t.session != nil {
		log.Info().Str("game", t.session.Game).Msg("tracker: discarding unlogged session")
	}
	if t.tracking {
		log.Info().Msg("tracker: tracking stopped")
	}
	t.tracking = false
	t.session = nil

	notifications.TrackingStopped(t.sink)
	return run
}

// OnPoll applies a sample as if the poller had taken it.
func (t *Tracker) OnPoll(sample PollSample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applyPollLocked(sample)
}

func (t *Tracker) handlePoll(gen uint64, sample PollSample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		// sample from a poller that was stopped while this tick was in flight
		return
	}
	t.applyPollLocked(sample)
}

func (t *Tracker) applyPollLocked(sample PollSample) {
	if !t.tracking {
		return
	}
	if t.session != nil && t.session.Paused {
		return
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = t.clock.Now()
	}

	isGame := t.classify(sample.ProcessName)
	switch {
	case isGame && t.session == nil:
		t.session = &Session{Game: sample.ProcessName, StartTime: sample.Timestamp}
		log.Info().Str("game", sample.ProcessName).Msg("tracker: game detected")
		notifications.GameDetected(t.sink, models.GameDetectedPayload{
			Game:      t.session.Game,
			StartTime: t.session.StartTime,
		})
	case isGame && t.session.Game != sample.ProcessName:
		// same session, new label: switching straight from one game to
		// another without a non-game window in between
		log.Info().
			Str("from", t.session.Game).
			Str("to", sample.ProcessName).
			Msg("tracker: game changed")
		t.session.Game = sample.ProcessName
		notifications.GameDetected(t.sink, models.GameDetectedPayload{
			Game:      t.session.Game,
			StartTime: t.session.StartTime,
		})
	case !isGame && t.session != nil:
		log.Info().
			Str("game", t.session.Game).
			Dur("elapsed", t.session.Elapsed(sample.Timestamp)).
			Msg("tracker: game stopped")
		t.session = nil
		notifications.GameStopped(t.sink)
	}
}

// Pause freezes the current session's clock. Pausing an already paused
// session does nothing.
func (t *Tracker) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracking || t.session == nil {
		return ErrNoActiveSession
	}
	if t.session.Paused {
		return nil
	}
	t.session.Paused = true
	t.session.PauseStartedAt = t.clock.Now()
	log.Info().Str("game", t.session.Game).Msg("tracker: session paused")
	return nil
}

// Resume restarts a paused session's clock, shifting its start time by
// the length of the pause. Resuming a running session does nothing.
func (t *Tracker) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracking || t.session == nil {
		return ErrNoActiveSession
	}
	if !t.session.Paused {
		return nil
	}
	paused := t.clock.Since(t.session.PauseStartedAt)
	if paused < 0 {
		paused = 0
	}
	t.session.StartTime = t.session.StartTime.Add(paused)
	t.session.Paused = false
	t.session.PauseStartedAt = time.Time{}
	log.Info().Str("game", t.session.Game).Dur("paused", paused).Msg("tracker: session resumed")
	return nil
}

// Log sends the current session to the backend and, on success, stops
// tracking. gameOverride replaces the detected label when non-empty.
// Sessions under MinLoggableHours are rejected and left running. On a
// backend failure the session is also left running so the user can retry.
func (t *Tracker) Log(ctx context.Context, gameOverride string) (*LogResult, error) {
	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	if t.logging {
		t.mu.Unlock()
		return nil, ErrLogInProgress
	}
	now := t.clock.Now()
	sess := *t.session
	gen := t.gen
	elapsed := sess.Elapsed(now)
	hours := RoundHours(elapsed)
	if hours < MinLoggableHours {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %.1f hours played", ErrSessionTooShort, hours)
	}
	t.logging = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.logging = false
		t.mu.Unlock()
	}()

	game := sess.Game
	if gameOverride != "" {
		game = gameOverride
	}

	if err := t.backend.LogGame(ctx, backend.LogGameRequest{Game: game, Hours: hours}); err != nil {
		log.Warn().Err(err).Str("game", game).Float64("hours", hours).Msg("tracker: failed to log session")
		return nil, fmt.Errorf("failed to log session: %w", err)
	}
	metrics.SessionsLogged.Inc()
	metrics.HoursLogged.Add(hours)

	if t.history != nil {
		_, err := t.history.Add(ctx, history.Entry{
			Game:      game,
			StartTime: sess.StartTime,
			EndTime:   sess.StartTime.Add(elapsed),
			Hours:     hours,
		})
		if err != nil {
			log.Warn().Err(err).Msg("tracker: failed to record session history")
		}
	}

	t.mu.Lock()
	notifications.SessionLogged(t.sink, models.LogSessionPayload{Game: game, Hours: hours})
	var run *pollRun
	if gen == t.gen {
		run = t.stopLocked()
	}
	t.mu.Unlock()
	run.wait()

	log.Info().Str("game", game).Float64("hours", hours).Msg("tracker: session logged")
	return &LogResult{Game: game, Hours: hours}, nil
}

// Snapshot copies the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{Tracking: t.tracking, State: t.stateLocked()}
	if t.session != nil {
		s := *t.session
		snap.Session = &s
	}
	return snap
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	switch {
	case !t.tracking:
		return StateIdle
	case t.session == nil:
		return StateActiveNoGame
	case t.session.Paused:
		return StatePaused
	default:
		return StateActiveInGame
	}
}

// Now is the tracker's clock, for computing elapsed time from a Snapshot.
func (t *Tracker) Now() time.Time {
	return t.clock.Now()
}
