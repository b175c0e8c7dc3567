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
	"fmt"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/models/requests"
	"github.com/heyclandestine/gamercred/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleGetSettings(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("api: received get settings request")
	if env.Settings == nil {
		return nil, ErrStoreUnavailable
	}

	settings, err := env.Settings.Settings(env.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}

// HandleSaveSettings replaces the stored settings. The new poll interval
// applies the next time tracking starts.
//
//nolint:gocritic // single-use parameter in API handler
func HandleSaveSettings(env requests.RequestEnv) (any, error) {
	log.Info().Msg("api: received save settings request")
	if env.Settings == nil {
		return nil, ErrStoreUnavailable
	}

	settings := models.DefaultUserSettings
	if err := validation.ValidateAndUnmarshal(env.Params, &settings); err != nil {
		return nil, clientErr(err)
	}

	if err := env.Settings.SaveSettings(env.Context, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return success(), nil
}
