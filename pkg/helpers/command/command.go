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

// Package command wraps os/exec so platform code that shells out to system
// tools can be tested without running them.
package command

import (
	"context"
	"os/exec"
)

// Executor runs external programs.
type Executor interface {
	// Output runs a command to completion and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Start launches a command without waiting for it to exit.
	Start(ctx context.Context, name string, args ...string) error
}

// RealExecutor runs commands with exec.CommandContext.
type RealExecutor struct{}

//nolint:wrapcheck // callers add context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Start launches the command detached from ctx so that a browser or similar
// helper outlives the request that spawned it.
//
//nolint:wrapcheck // callers add context
func (*RealExecutor) Start(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...) //nolint:noctx // detached on purpose
	hideWindow(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
