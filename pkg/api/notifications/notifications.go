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

// Package notifications publishes companion events to the UI. Publishers
// hold a Sink; in the running service the sink feeds the broker, which fans
// out to websocket clients.
package notifications

import (
	"encoding/json"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// Sink receives events. Notify must not block: the tracker publishes while
// holding its state lock.
type Sink interface {
	Notify(n models.Notification)
}

// ChanSink sends into a buffered channel and drops the event if the buffer
// is full.
type ChanSink chan<- models.Notification

func (s ChanSink) Notify(n models.Notification) {
	select {
	case s <- n:
	default:
		log.Warn().Str("method", n.Method).Msg("notifications: channel full, dropping notification")
	}
}

// Discard is a Sink for callers that don't care about events.
type Discard struct{}

func (Discard) Notify(models.Notification) {}

func send(s Sink, method string, payload any) {
	if s == nil {
		return
	}
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("notifications: failed to marshal payload")
			return
		}
		params = data
	}
	s.Notify(models.Notification{Method: method, Params: params})
}

func GameDetected(s Sink, payload models.GameDetectedPayload) {
	send(s, models.NotificationGameDetected, payload)
}

func GameStopped(s Sink) {
	send(s, models.NotificationGameStopped, nil)
}

func TrackingStarted(s Sink) {
	send(s, models.NotificationTrackingStarted, nil)
}

func TrackingStopped(s Sink) {
	send(s, models.NotificationTrackingStopped, nil)
}

func SessionLogged(s Sink, payload models.LogSessionPayload) {
	send(s, models.NotificationLogSession, payload)
}

func LoginSuccessful(s Sink, user models.User) {
	send(s, models.NotificationLoginSuccessful, models.LoginSuccessfulPayload{User: user})
}

func LoginFailed(s Sink, msg string) {
	send(s, models.NotificationLoginFailed, models.LoginFailedPayload{Error: msg})
}
