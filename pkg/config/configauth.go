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
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ClientSecretEnv     = "GAMERCRED_CLIENT_SECRET"
	DefaultAuthorizeURL = "https://discord.com/api/oauth2/authorize"
	DefaultTokenURL     = "https://discord.com/api/oauth2/token"
	DefaultUserInfoURL  = "https://discord.com/api/users/@me"
	DefaultScope        = "identify"
	DefaultRedirectPort = 53134
	DefaultLoginTimeout = 5 * time.Minute
)

type Auth struct {
	RedirectPort *int   `toml:"redirect_port,omitempty"`
	ClientID     string `toml:"client_id,omitempty"`
	AuthorizeURL string `toml:"authorize_url,omitempty"`
	TokenURL     string `toml:"token_url,omitempty"`
	UserInfoURL  string `toml:"userinfo_url,omitempty"`
	Scope        string `toml:"scope,omitempty"`
	LoginTimeout string `toml:"login_timeout,omitempty"`
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (c *Instance) AuthClientID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orDefault(c.vals.Auth.ClientID, DefaultClientID)
}

// AuthClientSecret is only ever read from the environment so it never ends
// up in config.toml.
func (*Instance) AuthClientSecret() string {
	return os.Getenv(ClientSecretEnv)
}

func (c *Instance) AuthorizeURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orDefault(c.vals.Auth.AuthorizeURL, DefaultAuthorizeURL)
}

func (c *Instance) TokenURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orDefault(c.vals.Auth.TokenURL, DefaultTokenURL)
}

func (c *Instance) UserInfoURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orDefault(c.vals.Auth.UserInfoURL, DefaultUserInfoURL)
}

func (c *Instance) AuthScope() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orDefault(c.vals.Auth.Scope, DefaultScope)
}

func (c *Instance) RedirectPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Auth.RedirectPort == nil {
		return DefaultRedirectPort
	}
	return *c.vals.Auth.RedirectPort
}

func (c *Instance) SetRedirectPort(port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Auth.RedirectPort = &port
}

func (c *Instance) LoginTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Auth.LoginTimeout, DefaultLoginTimeout)
}

func parseDuration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Msgf("config: invalid duration %q, using default %s", v, def)
		return def
	}
	return d
}
