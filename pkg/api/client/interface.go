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

package client

import (
	"context"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/models"
)

// APIClient is what the CLI needs from the API, so it can be faked in
// tests.
type APIClient interface {
	Call(ctx context.Context, method, params string) (string, error)
	CallAndWait(
		ctx context.Context,
		method, params string,
		timeout time.Duration,
		notifications ...string,
	) (models.Notification, error)
	WaitNotification(ctx context.Context, timeout time.Duration, method string) (string, error)
}

var _ APIClient = (*Client)(nil)
