//go:build deadlock

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

// Package syncutil holds the mutex types used across the companion. Building
// with -tags=deadlock swaps them for go-deadlock's detecting versions.
package syncutil

import (
	"os"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock-order detection is compiled in.
const DeadlockEnabled = true

func init() {
	// a login flow can legitimately hold the auth lock for the whole
	// browser round trip, so only flag locks held far longer than that
	deadlock.Opts.DeadlockTimeout = 10 * time.Minute
	deadlock.Opts.LogBuf = os.Stderr
}

// Mutex guards state shared between the poller, the API server and the
// auth flow.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is used where reads far outnumber writes, like config access.
type RWMutex struct {
	deadlock.RWMutex
}
