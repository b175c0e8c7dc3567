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

package linux

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/heyclandestine/gamercred/pkg/platforms"
)

// parseActiveWindowID reads the window id out of
// `xprop -root _NET_ACTIVE_WINDOW`, e.g.
// "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x4a00007".
func parseActiveWindowID(out string) (string, error) {
	idx := strings.LastIndex(out, "#")
	if idx < 0 {
		return "", fmt.Errorf("unexpected xprop output: %q", strings.TrimSpace(out))
	}
	id := strings.TrimSpace(out[idx+1:])
	// some window managers report a trailing list
	id, _, _ = strings.Cut(id, ",")
	if id == "" || id == "0x0" {
		return "", platforms.ErrNoActiveWindow
	}
	if _, err := strconv.ParseUint(strings.TrimPrefix(id, "0x"), 16, 64); err != nil {
		return "", fmt.Errorf("invalid window id %q: %w", id, err)
	}
	return id, nil
}

// parseWindowPID reads the pid out of `xprop -id <id> _NET_WM_PID`, e.g.
// "_NET_WM_PID(CARDINAL) = 12345".
func parseWindowPID(out string) (int32, error) {
	_, value, ok := strings.Cut(out, "=")
	if !ok {
		// "_NET_WM_PID:  not found." for windows that don't set it
		return 0, platforms.ErrNoActiveWindow
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window pid %q: %w", strings.TrimSpace(value), err)
	}
	return int32(pid), nil
}
