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

import (
	"encoding/json"
)

// Notifications pushed to every connected UI client.
const (
	NotificationGameDetected    = "game-detected"
	NotificationGameStopped     = "game-stopped"
	NotificationTrackingStarted = "tracking-started"
	NotificationTrackingStopped = "tracking-stopped"
	NotificationLogSession      = "log-session"
	NotificationLoginSuccessful = "login-successful"
	NotificationLoginFailed     = "login-failed"
)

// Methods the UI can call over the API websocket.
const (
	MethodGetSettings       = "getSettings"
	MethodSaveSettings      = "saveSettings"
	MethodGetCurrentSession = "getCurrentSession"
	MethodStartTracking     = "startTracking"
	MethodStopTracking      = "stopTracking"
	MethodPauseTracking     = "pauseTracking"
	MethodResumeTracking    = "resumeTracking"
	MethodLogSession        = "logSession"
	MethodGetHistory        = "getHistory"
	MethodStartOAuthLogin   = "startOAuthLogin"
	MethodGetStoredToken    = "getStoredToken"
	MethodLogout            = "logout"
	MethodCheckLoginStatus  = "checkLoginStatus"
	MethodGetStats          = "getStats"
	MethodGetLeaderboard    = "getLeaderboard"
	MethodGetActivity       = "getActivity"
	MethodVersion           = "version"
)

type Notification struct {
	Method string
	Params json.RawMessage
}

type RequestObject struct {
	ID      *RPCID          `json:"id,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

// ResponseErrorObject omits result entirely, which ResponseObject can't do
// without also dropping legitimate null results.
type ResponseErrorObject struct {
	Error   *ErrorObject `json:"error"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

type NotificationObject struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}
