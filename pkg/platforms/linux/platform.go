//go:build linux

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

// Package linux reads the foreground window on X11 desktops, including
// XWayland sessions, through xprop.
package linux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/helpers"
	"github.com/heyclandestine/gamercred/pkg/helpers/command"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/heyclandestine/gamercred/pkg/platforms/shared"
	"github.com/rs/zerolog/log"
)

type Platform struct {
	exec command.Executor
}

func NewPlatform() *Platform {
	return &Platform{exec: &command.RealExecutor{}}
}

// NewPlatformWithExecutor is used by tests to stub out xprop.
func NewPlatformWithExecutor(exec command.Executor) *Platform {
	return &Platform{exec: exec}
}

func (*Platform) ID() string {
	return platforms.PlatformIDLinux
}

func (*Platform) Settings() platforms.Settings {
	return shared.XDGSettings()
}

func (*Platform) StartPre(_ *config.Instance) error {
	if os.Getenv("DISPLAY") == "" {
		log.Warn().Msg("linux: DISPLAY is not set, game detection will not work")
	}
	if _, err := exec.LookPath("xprop"); err != nil {
		log.Warn().Err(err).Msg("linux: xprop not found, game detection will not work")
	}
	return nil
}

func (*Platform) Stop() error {
	return nil
}

func (p *Platform) ActiveWindow(ctx context.Context) (string, error) {
	out, err := p.exec.Output(ctx, "xprop", "-root", "_NET_ACTIVE_WINDOW")
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("%w: xprop unavailable", platforms.ErrNotSupported)
		}
		return "", fmt.Errorf("failed to query active window: %w", err)
	}
	id, err := parseActiveWindowID(string(out))
	if err != nil {
		return "", err
	}

	out, err = p.exec.Output(ctx, "xprop", "-id", id, "_NET_WM_PID")
	if err != nil {
		return "", fmt.Errorf("failed to query window %s pid: %w", id, err)
	}
	pid, err := parseWindowPID(string(out))
	if err != nil {
		return "", err
	}

	return shared.ProcessName(ctx, pid)
}

func (p *Platform) OpenBrowser(url string) error {
	return helpers.OpenBrowserWith(context.Background(), p.exec, url)
}
