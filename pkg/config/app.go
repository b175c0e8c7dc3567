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

import "time"

// AppVersion is set at build time with -ldflags.
var AppVersion = "DEVELOPMENT"

// DefaultClientID is the OAuth client registered for the companion. Release
// builds set it with -ldflags; config.toml can override it.
var DefaultClientID = ""

const (
	AppName           = "gamercred"
	LogFile           = "companion.log"
	CfgFile           = "config.toml"
	StoreFile         = "store.db"
	HistoryDBFile     = "history.db"
	LogsDir           = "logs"
	APIPath           = "/api"
	APIRequestTimeout = 30 * time.Second
)
