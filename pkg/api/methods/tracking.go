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
	"errors"
	"fmt"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/models/requests"
	"github.com/heyclandestine/gamercred/pkg/api/validation"
	"github.com/heyclandestine/gamercred/pkg/backend"
	"github.com/heyclandestine/gamercred/pkg/service/tracker"
	"github.com/heyclandestine/gamercred/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleGetCurrentSession(env requests.RequestEnv) (any, error) {
	snap := env.Tracker.Snapshot()
	resp := models.SessionResponse{
		State:    snap.State.String(),
		Tracking: snap.Tracking,
	}
	if snap.Session != nil {
		resp.Session = &models.ActiveSession{
			Game:           snap.Session.Game,
			StartTime:      snap.Session.StartTime,
			Paused:         snap.Session.Paused,
			ElapsedSeconds: int64(snap.Session.Elapsed(env.Tracker.Now()).Seconds()),
		}
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleStartTracking(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received start tracking request")
	if !env.Tracker.Start() {
		log.Debug().Msg("api: tracking already started")
	}
	return success(), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleStopTracking(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received stop tracking request")
	env.Tracker.Stop()
	return success(), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePauseTracking(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received pause tracking request")
	if err := env.Tracker.Pause(); err != nil {
		return failure(err), nil
	}
	return success(), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleResumeTracking(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received resume tracking request")
	if err := env.Tracker.Resume(); err != nil {
		return failure(err), nil
	}
	return success(), nil
}

// HandleLogSession sends the current session to the backend. Session state
// problems (nothing to log, too short, backend refused) come back as
// success=false rather than as JSON-RPC errors.
//
//nolint:gocritic // single-use parameter in API handler
func HandleLogSession(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received log session request")

	var params models.LogSessionParams
	if err := validation.ValidateOptional(env.Params, &params); err != nil {
		return nil, clientErr(err)
	}
	game := ""
	if params.Game != nil {
		game = *params.Game
	}

	res, err := env.Tracker.Log(env.Context, game)
	if err != nil {
		return models.LogSessionResponse{Success: false, Error: logErrorMessage(err)}, nil
	}
	return models.LogSessionResponse{Success: true, Game: res.Game, Hours: res.Hours}, nil
}

func logErrorMessage(err error) string {
	switch {
	case errors.Is(err, tracker.ErrNoActiveSession):
		return "No active session to log"
	case errors.Is(err, tracker.ErrSessionTooShort):
		return fmt.Sprintf("Sessions shorter than %.1f hours can't be logged", tracker.MinLoggableHours)
	case errors.Is(err, tracker.ErrLogInProgress):
		return "This session is already being logged"
	case errors.Is(err, backend.ErrNotLoggedIn):
		return "Log in with Discord to save sessions"
	case errors.Is(err, httpclient.ErrNetwork):
		return "Could not reach the GamerCred server, your session was kept"
	default:
		return err.Error()
	}
}
