//go:build windows

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

// Package windows reads the foreground window through user32.
package windows

import (
	"context"
	"fmt"

	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/helpers"
	"github.com/heyclandestine/gamercred/pkg/helpers/command"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/heyclandestine/gamercred/pkg/platforms/shared"
	"golang.org/x/sys/windows"
)

type Platform struct {
	exec command.Executor
}

func NewPlatform() *Platform {
	return &Platform{exec: &command.RealExecutor{}}
}

func (*Platform) ID() string {
	return platforms.PlatformIDWindows
}

func (*Platform) Settings() platforms.Settings {
	return shared.XDGSettings()
}

func (*Platform) StartPre(_ *config.Instance) error {
	return nil
}

func (*Platform) Stop() error {
	return nil
}

func (*Platform) ActiveWindow(ctx context.Context) (string, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return "", platforms.ErrNoActiveWindow
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return "", fmt.Errorf("failed to get foreground window pid: %w", err)
	}
	if pid == 0 {
		return "", platforms.ErrNoActiveWindow
	}

	return shared.ProcessName(ctx, int32(pid)) //nolint:gosec // pids fit in int32
}

func (p *Platform) OpenBrowser(url string) error {
	return helpers.OpenBrowserWith(context.Background(), p.exec, url)
}
