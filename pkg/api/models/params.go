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

package models

// UserSettings are the preferences the UI edits through getSettings and
// saveSettings. They live in the local store, not config.toml.
type UserSettings struct {
	AutoStartTracking   bool `json:"autoStartTracking"`
	MinimizeToTray      bool `json:"minimizeToTray"`
	LaunchOnStartup     bool `json:"launchOnStartup"`
	NotifyOnDetect      bool `json:"notifyOnDetect"`
	PollIntervalSeconds int  `json:"pollIntervalSeconds" validate:"omitempty,min=1,max=300"`
}

var DefaultUserSettings = UserSettings{
	MinimizeToTray:      true,
	NotifyOnDetect:      true,
	PollIntervalSeconds: 5,
}

type LogSessionParams struct {
	// Game overrides the detected label, for when the UI lets the user
	// correct it before logging.
	Game *string `json:"game" validate:"omitempty,label,max=128"`
}

type HistoryParams struct {
	Limit *int `json:"limit" validate:"omitempty,min=1,max=500"`
}
