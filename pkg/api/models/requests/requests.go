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

// Package requests holds what every API method handler is given.
package requests

import (
	"context"
	"encoding/json"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/database/history"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/heyclandestine/gamercred/pkg/service/tracker"
)

type SettingsStore interface {
	Settings(ctx context.Context) (models.UserSettings, error)
	SaveSettings(ctx context.Context, settings models.UserSettings) error
}

type Authenticator interface {
	StartLogin(ctx context.Context) error
	StoredToken(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	CheckLoginStatus(ctx context.Context) (*models.User, error)
}

type BackendReader interface {
	Stats(ctx context.Context) (json.RawMessage, error)
	Leaderboard(ctx context.Context) (json.RawMessage, error)
	Activity(ctx context.Context) (json.RawMessage, error)
}

type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

type RequestEnv struct {
	// Context is the request's context, cancelled when the client
	// disconnects or the request times out.
	Context context.Context
	// ServiceContext outlives the request, for work that continues after
	// the response is sent.
	ServiceContext context.Context
	Platform       platforms.Platform
	Config         *config.Instance
	Settings       SettingsStore
	Tracker        *tracker.Tracker
	Auth           Authenticator
	Backend        BackendReader
	History        HistoryReader
	Params         json.RawMessage
	ID             models.RPCID
	IsLocal        bool
}
