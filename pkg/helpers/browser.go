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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/heyclandestine/gamercred/pkg/helpers/command"
)

// MaxURLLength caps URLs handed to the system browser.
const MaxURLLength = 8192

var ErrInvalidURL = errors.New("invalid browser URL")

// ValidateBrowserURL only lets http and https URLs through to the browser
// launcher.
func ValidateBrowserURL(url string) error {
	if len(url) > MaxURLLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidURL, len(url), MaxURLLength)
	}
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("%w: scheme must be http:// or https://", ErrInvalidURL)
	}
	return nil
}

// OpenBrowserWith opens url in the default browser using exec. The browser
// process is started and left running.
func OpenBrowserWith(ctx context.Context, exec command.Executor, url string) error {
	if err := ValidateBrowserURL(url); err != nil {
		return err
	}
	name, args := browserCommand(url)
	if err := exec.Start(ctx, name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// OpenBrowser opens url with the real system launcher.
func OpenBrowser(url string) error {
	return OpenBrowserWith(context.Background(), &command.RealExecutor{}, url)
}
