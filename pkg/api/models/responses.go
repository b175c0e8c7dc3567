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

import "time"

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type GameDetectedPayload struct {
	StartTime time.Time `json:"startTime"`
	Game      string    `json:"game"`
}

type LogSessionPayload struct {
	Game  string  `json:"game"`
	Hours float64 `json:"hours"`
}

type LoginSuccessfulPayload struct {
	User User `json:"user"`
}

type LoginFailedPayload struct {
	Error string `json:"error"`
}

type ActiveSession struct {
	StartTime      time.Time `json:"startTime"`
	Game           string    `json:"game"`
	ElapsedSeconds int64     `json:"elapsedSeconds"`
	Paused         bool      `json:"paused"`
}

type SessionResponse struct {
	Session  *ActiveSession `json:"session"`
	State    string         `json:"state"`
	Tracking bool           `json:"tracking"`
}

type SuccessResponse struct {
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

type LogSessionResponse struct {
	Error   string  `json:"error,omitempty"`
	Game    string  `json:"game,omitempty"`
	Hours   float64 `json:"hours,omitempty"`
	Success bool    `json:"success"`
}

type StoredTokenResponse struct {
	Token *string `json:"token"`
}

type LoginStatusResponse struct {
	User     *User `json:"user,omitempty"`
	LoggedIn bool  `json:"loggedIn"`
}

type HistoryEntry struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Game      string    `json:"game"`
	ID        int64     `json:"id"`
	Hours     float64   `json:"hours"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}
