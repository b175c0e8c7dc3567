//go:build darwin

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

// Package mac reads the frontmost application through System Events.
package mac

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/helpers"
	"github.com/heyclandestine/gamercred/pkg/helpers/command"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/heyclandestine/gamercred/pkg/platforms/shared"
)

const frontmostScript = `tell application "System Events" to get unix id of first application process whose frontmost is true`

type Platform struct {
	exec command.Executor
}

func NewPlatform() *Platform {
	return &Platform{exec: &command.RealExecutor{}}
}

func NewPlatformWithExecutor(exec command.Executor) *Platform {
	return &Platform{exec: exec}
}

func (*Platform) ID() string {
	return platforms.PlatformIDMac
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

func (p *Platform) ActiveWindow(ctx context.Context) (string, error) {
	out, err := p.exec.Output(ctx, "osascript", "-e", frontmostScript)
	if err != nil {
		return "", fmt.Errorf("failed to query frontmost application: %w", err)
	}
	pid, err := parseFrontmostPID(string(out))
	if err != nil {
		return "", err
	}
	return shared.ProcessName(ctx, pid)
}

func (p *Platform) OpenBrowser(url string) error {
	return helpers.OpenBrowserWith(context.Background(), p.exec, url)
}

func parseFrontmostPID(out string) (int32, error) {
	s := strings.TrimSpace(out)
	if s == "" {
		return 0, platforms.ErrNoActiveWindow
	}
	pid, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid frontmost pid %q: %w", s, err)
	}
	return int32(pid), nil
}
