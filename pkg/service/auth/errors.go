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

package auth

import (
	"errors"
	"fmt"

	"github.com/heyclandestine/gamercred/pkg/shared/httpclient"
)

var (
	ErrNotConfigured   = errors.New("oauth client id is not configured")
	ErrLoginInProgress = errors.New("login already in progress")
	ErrLoginTimeout    = errors.New("login timed out")
	ErrUserDenied      = errors.New("authorization denied")
	ErrMissingCode     = errors.New("no authorization code received")
	ErrStateMismatch   = errors.New("oauth state mismatch")
	ErrTokenExchange   = errors.New("token exchange failed")
	ErrUserInfo        = errors.New("user info request failed")
	ErrTokenInvalid    = errors.New("stored token is no longer valid")
)

// ProviderError is an error the identity provider returned on the
// redirect, such as access_denied when the user clicks cancel.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s (%s)", ErrUserDenied, e.Description, e.Code)
	}
	return fmt.Sprintf("%s: %s", ErrUserDenied, e.Code)
}

func (*ProviderError) Unwrap() error {
	return ErrUserDenied
}

// HTTPError is a non-2xx answer from the token or user-info endpoint. Op
// is ErrTokenExchange or ErrUserInfo.
type HTTPError struct {
	Op     error
	Body   string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return e.Op
}

// UserMessage is the text shown to the user in a login-failed event.
func UserMessage(err error) string {
	var provErr *ProviderError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &provErr):
		msg := "Login cancelled"
		if provErr.Code != "" {
			msg += ": " + provErr.Code
		}
		if provErr.Description != "" {
			msg += " (" + provErr.Description + ")"
		}
		return msg
	case errors.Is(err, ErrMissingCode):
		return "No authorization code received"
	case errors.Is(err, ErrStateMismatch):
		return "Login response did not match this request, please try again"
	case errors.Is(err, ErrLoginTimeout):
		return "Login timed out"
	case errors.Is(err, ErrNotConfigured):
		return "Login is not configured"
	case errors.Is(err, httpclient.ErrNetwork):
		return "Could not reach Discord, check your connection"
	case errors.Is(err, ErrTokenExchange):
		return "Failed to exchange authorization code"
	case errors.Is(err, ErrUserInfo):
		return "Failed to fetch Discord profile"
	default:
		return err.Error()
	}
}
