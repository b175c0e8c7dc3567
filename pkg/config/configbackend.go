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

package config

import (
	"strings"
	"time"
)

const (
	DefaultBackendURL     = "https://gamercred.onrender.com"
	DefaultBackendTimeout = 10 * time.Second
)

type Backend struct {
	BaseURL string `toml:"base_url,omitempty"`
	Timeout string `toml:"timeout,omitempty"`
}

// BackendURL is the backend base URL without a trailing slash.
func (c *Instance) BackendURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimRight(orDefault(c.vals.Backend.BaseURL, DefaultBackendURL), "/")
}

func (c *Instance) SetBackendURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Backend.BaseURL = url
}

func (c *Instance) BackendTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Backend.Timeout, DefaultBackendTimeout)
}
