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

// Package methods implements the API's JSON-RPC methods. Each handler takes
// a requests.RequestEnv and returns a JSON-encodable result.
package methods

import (
	"errors"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/models/requests"
)

type NoContent struct{}

// ClientError is returned to the caller as the JSON-RPC error message
// verbatim. Other errors are logged and reported generically.
type ClientError struct {
	Err error
}

func (e *ClientError) Error() string { return e.Err.Error() }
func (e *ClientError) Unwrap() error { return e.Err }

func clientErr(err error) error {
	return &ClientError{Err: err}
}

var ErrStoreUnavailable = errors.New("local store is not available")

type Handler func(requests.RequestEnv) (any, error)

// Map is every method the API serves.
var Map = map[string]Handler{
	// settings
	models.MethodGetSettings:  HandleGetSettings,
	models.MethodSaveSettings: HandleSaveSettings,
	// tracking
	models.MethodGetCurrentSession: HandleGetCurrentSession,
	models.MethodStartTracking:     HandleStartTracking,
	models.MethodStopTracking:      HandleStopTracking,
	models.MethodPauseTracking:     HandlePauseTracking,
	models.MethodResumeTracking:    HandleResumeTracking,
	models.MethodLogSession:        HandleLogSession,
	models.MethodGetHistory:        HandleGetHistory,
	// auth
	models.MethodStartOAuthLogin:  HandleStartOAuthLogin,
	models.MethodGetStoredToken:   HandleGetStoredToken,
	models.MethodLogout:           HandleLogout,
	models.MethodCheckLoginStatus: HandleCheckLoginStatus,
	// backend
	models.MethodGetStats:       HandleGetStats,
	models.MethodGetLeaderboard: HandleGetLeaderboard,
	models.MethodGetActivity:    HandleGetActivity,
	// utils
	models.MethodVersion: HandleVersion,
}

func failure(err error) models.SuccessResponse {
	return models.SuccessResponse{Success: false, Error: err.Error()}
}

func success() models.SuccessResponse {
	return models.SuccessResponse{Success: true}
}
