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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/heyclandestine/gamercred/pkg/cli"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/platforms/windows"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	pl := windows.NewPlatform()
	flags := cli.SetupFlags()

	quiet := flag.Bool(
		"quiet",
		false,
		"only write logs to the log file",
	)

	flags.Pre(pl)

	var logWriters []io.Writer
	if !*quiet {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}

	cfg := cli.Setup(
		pl,
		config.BaseDefaults,
		logWriters,
	)

	flags.Post(cfg, pl)

	return cli.RunApp(pl, cfg) //nolint:wrapcheck // already wrapped
}
