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

// Package platforms defines what the companion needs from the host OS:
// where to keep its files and which process owns the foreground window.
package platforms

import (
	"context"
	"errors"

	"github.com/heyclandestine/gamercred/pkg/config"
)

const (
	PlatformIDLinux   = "linux"
	PlatformIDMac     = "mac"
	PlatformIDWindows = "windows"
)

var (
	// ErrNoActiveWindow means no window currently has focus, e.g. the
	// desktop is locked.
	ErrNoActiveWindow = errors.New("no active window")
	// ErrNotSupported is returned when the desktop session doesn't expose
	// the foreground window, like a bare Wayland compositor.
	ErrNotSupported = errors.New("not supported on this platform")
)

type Settings struct {
	DataDir   string
	ConfigDir string
	TempDir   string
}

type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string
	// Settings returns the platform's directories.
	Settings() Settings
	// StartPre runs before the service starts and checks that the tools
	// the platform depends on are available.
	StartPre(*config.Instance) error
	// Stop releases anything StartPre acquired.
	Stop() error
	// ActiveWindow returns the executable name of the process owning the
	// foreground window, e.g. "Cyberpunk2077.exe" or "steam".
	ActiveWindow(ctx context.Context) (string, error)
	// OpenBrowser opens url in the user's default browser.
	OpenBrowser(url string) error
}
