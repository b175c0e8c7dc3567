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

// Package cli holds the flags and startup shared by every platform's
// main package.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/heyclandestine/gamercred/internal/telemetry"
	"github.com/heyclandestine/gamercred/pkg/api/client"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/database/history"
	"github.com/heyclandestine/gamercred/pkg/helpers"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/rs/zerolog/log"
)

// loginGrace covers the time between the flow timing out in the service
// and its login-failed notification reaching us.
const loginGrace = 5 * time.Second

type Flags struct {
	API           *string
	ExportHistory *string
	Version       *bool
	Login         *bool
	Logout        *bool
}

// SetupFlags defines all common CLI flags between platforms.
func SetupFlags() *Flags {
	return &Flags{
		API: flag.String(
			"api",
			"",
			"send method:params to the running service and print the response",
		),
		ExportHistory: flag.String(
			"export-history",
			"",
			"write the local session history to a CSV file",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Login: flag.Bool(
			"login",
			false,
			"log in with Discord through the running service",
		),
		Logout: flag.Bool(
			"logout",
			false,
			"clear the stored Discord login",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre(pl platforms.Platform) {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("GamerCred Companion v%s (%s)\n", config.AppVersion, pl.ID())
		os.Exit(0)
	}
}

// Post actions all remaining common flags that require the environment to
// be set up. It exits the process if one of them was given.
func (f *Flags) Post(cfg *config.Instance, pl platforms.Platform) {
	code, handled := f.run(context.Background(), env{
		api:     client.NewLocal(cfg),
		cfg:     cfg,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		passed:  isFlagPassed,
		history: helpers.HistoryPath(pl),
	})
	if handled {
		os.Exit(code)
	}
}

type env struct {
	api     client.APIClient
	cfg     *config.Instance
	stdout  io.Writer
	stderr  io.Writer
	passed  func(name string) bool
	history string
}

func (e env) fail(format string, args ...any) int {
	_, _ = fmt.Fprintf(e.stderr, "Error: "+format+"\n", args...)
	return 1
}

func (f *Flags) run(ctx context.Context, e env) (code int, handled bool) {
	switch {
	case e.passed("api"):
		return runAPI(ctx, e, *f.API), true
	case *f.Login:
		return runLogin(ctx, e), true
	case *f.Logout:
		if _, err := e.api.Call(ctx, models.MethodLogout, ""); err != nil {
			log.Error().Err(err).Msg("error logging out")
			return e.fail("logging out: %v", err), true
		}
		_, _ = fmt.Fprintln(e.stdout, "Logged out")
		return 0, true
	case e.passed("export-history"):
		return runExport(ctx, e, *f.ExportHistory), true
	}
	return 0, false
}

func runAPI(ctx context.Context, e env, value string) int {
	if value == "" {
		return e.fail("api flag requires a value")
	}

	method, params, _ := strings.Cut(value, ":")
	resp, err := e.api.Call(ctx, method, params)
	if err != nil {
		log.Error().Err(err).Msg("error calling API")
		return e.fail("calling API: %v", err)
	}
	_, _ = fmt.Fprintln(e.stdout, resp)
	return 0
}

func runLogin(ctx context.Context, e env) int {
	_, _ = fmt.Fprintln(e.stdout, "Opening Discord in your browser...")

	n, err := e.api.CallAndWait(
		ctx, models.MethodStartOAuthLogin, "",
		e.cfg.LoginTimeout()+loginGrace,
		models.NotificationLoginSuccessful, models.NotificationLoginFailed,
	)
	if err != nil {
		log.Error().Err(err).Msg("error logging in")
		return e.fail("logging in: %v", err)
	}

	switch n.Method {
	case models.NotificationLoginSuccessful:
		var payload models.LoginSuccessfulPayload
		if err := json.Unmarshal(n.Params, &payload); err != nil {
			return e.fail("reading login result: %v", err)
		}
		_, _ = fmt.Fprintf(e.stdout, "Logged in as %s\n", payload.User.Username)
		return 0
	default:
		var payload models.LoginFailedPayload
		if err := json.Unmarshal(n.Params, &payload); err != nil {
			return e.fail("reading login result: %v", err)
		}
		return e.fail("%s", payload.Error)
	}
}

// runExport reads the history database directly, so it works whether or
// not the service is running.
func runExport(ctx context.Context, e env, path string) int {
	if path == "" {
		return e.fail("export-history flag requires a file path")
	}

	db, err := history.Open(ctx, e.history)
	if err != nil {
		return e.fail("opening history: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing history database")
		}
	}()

	entries, err := db.All(ctx)
	if err != nil {
		return e.fail("reading history: %v", err)
	}

	if err := writeFile(path, func(w io.Writer) error { return history.WriteCSV(w, entries) }); err != nil {
		return e.fail("writing %s: %v", path, err)
	}
	_, _ = fmt.Fprintf(e.stdout, "Exported %d sessions to %s\n", len(entries), path)
	return 0
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path) //nolint:gosec // path comes from the user's own flag
	if err != nil {
		return err //nolint:wrapcheck // caller adds the path
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return write(f)
}

// Setup initializes the user config and logging. Returns a user config
// object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	pl platforms.Platform,
	defaultConfig config.Values,
	writers []io.Writer,
) *config.Instance {
	err := helpers.EnsureDirectories(pl)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
		os.Exit(1)
	}

	err = helpers.InitLogging(pl, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(pl), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	helpers.SetLogLevel(cfg.DebugLogging())

	if err := telemetry.Init(
		cfg.ErrorReporting(),
		cfg.DeviceID(),
		config.AppVersion,
		pl.ID(),
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
