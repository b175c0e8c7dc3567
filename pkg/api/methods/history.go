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

const defaultHistoryLimit = 50

//nolint:gocritic // single-use parameter in API handler
func HandleGetHistory(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("api: received get history request")
	if env.History == nil {
		return nil, ErrStoreUnavailable
	}

	var params models.HistoryParams
	if err := validation.ValidateOptional(env.Params, &params); err != nil {
		return nil, clientErr(err)
	}
	limit := defaultHistoryLimit
	if params.Limit != nil {
		limit = *params.Limit
	}

	entries, err := env.History.Recent(env.Context, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	resp := models.HistoryResponse{Entries: make([]models.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, models.HistoryEntry{
			ID:        e.ID,
			Game:      e.Game,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Hours:     e.Hours,
		})
	}
	return resp, nil
}
