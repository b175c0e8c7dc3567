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

// Package shared holds helpers used by more than one platform.
package shared

import (
	"context"
	"fmt"

	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessName resolves a PID to its executable name.
func ProcessName(ctx context.Context, pid int32) (string, error) {
	if pid <= 0 {
		return "", platforms.ErrNoActiveWindow
	}
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read name of process %d: %w", pid, err)
	}
	return name, nil
}
