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

	"github.com/heyclandestine/gamercred/pkg/api/models/requests"
	"github.com/heyclandestine/gamercred/pkg/backend"
	"github.com/heyclandestine/gamercred/pkg/shared/httpclient"
)

var ErrBackendUnavailable = errors.New("backend is not configured")

// backendRead passes a backend response through untouched. The UI owns
// the shape of stats, leaderboard and activity data.
func backendRead(
	env requests.RequestEnv, //nolint:gocritic // single-use parameter in API handler
	read func(requests.BackendReader, context.Context) (json.RawMessage, error),
) (any, error) {
	if env.Backend == nil {
		return nil, ErrBackendUnavailable
	}
	data, err := read(env.Backend, env.Context)
	var apiErr *backend.APIError
	switch {
	case err == nil:
		return data, nil
	case errors.As(err, &apiErr):
		return nil, clientErr(apiErr)
	case errors.Is(err, httpclient.ErrNetwork):
		return nil, clientErr(errors.New("could not reach the GamerCred server"))
	default:
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetStats(env requests.RequestEnv) (any, error) {
	return backendRead(env, requests.BackendReader.Stats)
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetLeaderboard(env requests.RequestEnv) (any, error) {
	return backendRead(env, requests.BackendReader.Leaderboard)
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetActivity(env requests.RequestEnv) (any, error) {
	return backendRead(env, requests.BackendReader.Activity)
}
