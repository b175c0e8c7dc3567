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
	"github.com/heyclandestine/gamercred/pkg/service/auth"
	"github.com/rs/zerolog/log"
)

// HandleStartOAuthLogin opens the browser and returns straight away. The
// result arrives later as a login-successful or login-failed notification.
//
//nolint:gocritic // single-use parameter in API handler
func HandleStartOAuthLogin(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received start login request")

	ctx := env.ServiceContext
	if ctx == nil {
		ctx = env.Context
	}
	err := env.Auth.StartLogin(ctx)
	if errors.Is(err, auth.ErrLoginInProgress) {
		return failure(err), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to start login: %w", err)
	}
	return success(), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetStoredToken(env requests.RequestEnv) (any, error) {
	token, err := env.Auth.StoredToken(env.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return models.StoredTokenResponse{}, nil
	}
	return models.StoredTokenResponse{Token: &token}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleLogout(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received logout request")
	if err := env.Auth.Logout(env.Context); err != nil {
		return nil, fmt.Errorf("failed to log out: %w", err)
	}
	return success(), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleCheckLoginStatus(env requests.RequestEnv) (any, error) {
	user, err := env.Auth.CheckLoginStatus(env.Context)
	if err != nil {
		log.Warn().Err(err).Msg("api: login status check failed")
		return models.LoginStatusResponse{LoggedIn: false}, nil
	}
	if user == nil {
		return models.LoginStatusResponse{LoggedIn: false}, nil
	}
	return models.LoginStatusResponse{LoggedIn: true, User: user}, nil
}
