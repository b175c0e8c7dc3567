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

package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/platforms"
)

func ConfigDir(pl platforms.Platform) string {
	return pl.Settings().ConfigDir
}

func DataDir(pl platforms.Platform) string {
	return pl.Settings().DataDir
}

func LogDir(pl platforms.Platform) string {
	return filepath.Join(DataDir(pl), config.LogsDir)
}

// StorePath is the credential and settings store.
func StorePath(pl platforms.Platform) string {
	return filepath.Join(DataDir(pl), config.StoreFile)
}

// HistoryPath is the local session history database.
func HistoryPath(pl platforms.Platform) string {
	return filepath.Join(DataDir(pl), config.HistoryDBFile)
}

// EnsureDirectories creates every directory the companion writes to.
func EnsureDirectories(pl platforms.Platform) error {
	for _, dir := range []string{
		ConfigDir(pl),
		DataDir(pl),
		LogDir(pl),
		pl.Settings().TempDir,
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
