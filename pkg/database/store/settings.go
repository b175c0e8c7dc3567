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

package store

import (
	"context"
	"errors"

	"github.com/heyclandestine/gamercred/pkg/api/models"
)

// Settings returns the saved user settings, or the defaults if none have
// been saved yet.
func (s *Store) Settings(ctx context.Context) (models.UserSettings, error) {
	settings := models.DefaultUserSettings
	err := s.Get(ctx, KeySettings, &settings)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultUserSettings, nil
	}
	if err != nil {
		return models.DefaultUserSettings, err
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	return s.Set(ctx, KeySettings, settings)
}
