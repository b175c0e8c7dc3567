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

// Package service wires the companion together: local storage, the
// tracker, Discord login, the backend client and the API server.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/notifications"
	"github.com/heyclandestine/gamercred/pkg/backend"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/database/history"
	"github.com/heyclandestine/gamercred/pkg/database/store"
	"github.com/heyclandestine/gamercred/pkg/helpers"
	"github.com/heyclandestine/gamercred/pkg/metrics"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/heyclandestine/gamercred/pkg/service/auth"
	"github.com/heyclandestine/gamercred/pkg/service/broker"
	"github.com/heyclandestine/gamercred/pkg/service/tracker"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	notificationBuffer = 100
	settingsTimeout    = 2 * time.Second
)

// pollInterval prefers the interval saved from the UI and falls back to
// config.toml when none was saved.
func pollInterval(cfg *config.Instance, st *store.Store) func() time.Duration {
	return func() time.Duration {
		ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
		defer cancel()

		var settings models.UserSettings
		err := st.Get(ctx, store.KeySettings, &settings)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			log.Warn().Err(err).Msg("service: failed to read poll interval setting")
		case settings.PollIntervalSeconds > 0:
			return time.Duration(settings.PollIntervalSeconds) * time.Second
		}
		return cfg.PollInterval()
	}
}

type databases struct {
	store   *store.Store
	history *history.DB
}

func (d *databases) Close() {
	if d.history != nil {
		if err := d.history.Close(); err != nil {
			log.Warn().Err(err).Msg("service: error closing history database")
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			log.Warn().Err(err).Msg("service: error closing store")
		}
	}
}

func openDatabases(ctx context.Context, pl platforms.Platform) (*databases, error) {
	dbs := &databases{}

	log.Debug().Msg("service: opening local store")
	st, err := store.Open(helpers.StorePath(pl))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	dbs.store = st

	log.Debug().Msg("service: opening history database")
	hist, err := history.Open(ctx, helpers.HistoryPath(pl))
	if err != nil {
		dbs.Close()
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	dbs.history = hist

	return dbs, nil
}

// Start brings the service up and returns once the API is being served.
// stop shuts everything down and returns the API server's error, if any;
// done closes when shutdown has finished, whether stop was called or the
// API server failed on its own.
func Start(
	pl platforms.Platform,
	cfg *config.Instance,
) (stop func() error, done <-chan struct{}, err error) {
	return start(pl, cfg, nil)
}

// start serves the API on ln, or on the configured port when ln is nil.
func start(
	pl platforms.Platform,
	cfg *config.Instance,
	ln net.Listener,
) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	if err := helpers.EnsureDirectories(pl); err != nil {
		return nil, nil, err //nolint:wrapcheck // already describes the dir
	}

	log.Info().Msg("running platform pre start")
	if err := pl.StartPre(cfg); err != nil {
		return nil, nil, fmt.Errorf("platform start pre failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	log.Info().Msg("opening databases")
	dbs, err := openDatabases(ctx, pl)
	if err != nil {
		cancel()
		if stopErr := pl.Stop(); stopErr != nil {
			log.Warn().Err(stopErr).Msg("error stopping platform")
		}
		return nil, nil, err
	}

	ns := make(chan models.Notification, notificationBuffer)
	sink := notifications.ChanSink(ns)
	notifBroker := broker.NewBroker(ctx, ns)
	notifBroker.Start()

	authenticator := auth.New(auth.Args{
		Config: cfg,
		Store:  dbs.store,
		Sink:   sink,
		Open: func(_ context.Context, url string) error {
			return pl.OpenBrowser(url) //nolint:wrapcheck // platform errors are descriptive
		},
	})

	backendClient := backend.New(cfg.BackendURL(), cfg.BackendTimeout(), authenticator.StoredToken)

	tr := tracker.New(tracker.Args{
		Clock:        clockwork.NewRealClock(),
		Sink:         sink,
		Backend:      backendClient,
		History:      dbs.history,
		Source:       pl,
		PollInterval: pollInterval(cfg, dbs.store),
	})

	metricsNotifications, _ := notifBroker.Subscribe(notificationBuffer)
	go metrics.RecordEvents(metricsNotifications)

	apiNotifications, _ := notifBroker.Subscribe(notificationBuffer)
	server := api.NewServer(api.ServerArgs{
		Platform:      pl,
		Config:        cfg,
		Settings:      dbs.store,
		Tracker:       tr,
		Auth:          authenticator,
		Backend:       backendClient,
		History:       dbs.history,
		Notifications: apiNotifications,
	})

	g, gctx := errgroup.WithContext(ctx)

	log.Info().Msg("starting API service")
	g.Go(func() error {
		if ln != nil {
			return server.Serve(gctx, ln)
		}
		return server.Run(gctx)
	})

	g.Go(func() error {
		err := cfg.Watch(gctx, func() {
			helpers.SetLogLevel(cfg.DebugLogging())
		})
		if err != nil {
			log.Warn().Err(err).Msg("config watcher stopped, changes need a restart")
		}
		return nil
	})

	g.Go(func() error {
		user, err := authenticator.CheckLoginStatus(gctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("could not check login status")
		case user != nil:
			log.Info().Str("user", user.Username).Msg("logged in")
		default:
			log.Info().Msg("not logged in")
		}
		return nil
	})

	settings, err := dbs.store.Settings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read settings, using defaults")
	}
	if settings.AutoStartTracking {
		log.Info().Msg("auto starting tracking")
		tr.Start()
	}

	var serveErr error
	doneCh := make(chan struct{})
	go func() {
		serveErr = g.Wait()
		if serveErr != nil {
			log.Error().Err(serveErr).Msg("api service failed, shutting down")
		}
		log.Info().Msg("service context cancelled, running cleanup")

		tr.Stop()
		authenticator.Close()
		cancel()
		notifBroker.Wait()
		dbs.Close()
		if stopErr := pl.Stop(); stopErr != nil {
			log.Warn().Err(stopErr).Msg("error stopping platform")
		}

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	log.Info().Msg("service fully initialized")

	stop = func() error {
		cancel()
		<-doneCh
		return serveErr
	}
	return stop, doneCh, nil
}
