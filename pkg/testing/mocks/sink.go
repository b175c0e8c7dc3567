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

package mocks

import (
	"encoding/json"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/helpers/syncutil"
)

// RecordingSink is a notifications.Sink that keeps every event.
type RecordingSink struct {
	events []models.Notification
	mu     syncutil.Mutex
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{events: make([]models.Notification, 0)}
}

func (s *RecordingSink) Notify(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, n)
}

func (s *RecordingSink) Events() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.events...)
}

// Methods lists the event names in the order they were published.
func (s *RecordingSink) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Method)
	}
	return out
}

// Last decodes the params of the most recent event named method into out
// and reports whether one was found.
func (s *RecordingSink) Last(method string, out any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Method != method {
			continue
		}
		if out != nil && len(s.events[i].Params) > 0 {
			if err := json.Unmarshal(s.events[i].Params, out); err != nil {
				return false
			}
		}
		return true
	}
	return false
}

func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}
