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

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heyclandestine/gamercred/internal/telemetry"
	"github.com/heyclandestine/gamercred/pkg/api/client"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/heyclandestine/gamercred/pkg/service"
	"github.com/rs/zerolog/log"
)

const runningCheckTimeout = time.Second

// ServiceRunning reports whether a companion service already answers on
// the configured API port.
func ServiceRunning(cfg *config.Instance) bool {
	return serviceRunning(client.NewLocal(cfg))
}

func serviceRunning(api client.APIClient) bool {
	ctx, cancel := context.WithTimeout(context.Background(), runningCheckTimeout)
	defer cancel()
	_, err := api.Call(ctx, models.MethodVersion, "")
	return err == nil
}

// RunApp runs the service in the foreground until it's interrupted or the
// service stops on its own.
func RunApp(pl platforms.Platform, cfg *config.Instance) (returnErr error) {
	defer telemetry.Close()
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	if ServiceRunning(cfg) {
		log.Info().Int("port", cfg.APIPort()).Msg("service already running, exiting")
		return nil
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	log.Info().Msg("starting service")
	stopSvc, done, err := service.Start(pl, cfg)
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		return fmt.Errorf("error starting service: %w", err)
	}

	select {
	case sig := <-sigs:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-done:
		log.Info().Msg("service shut down internally")
	}

	if err := stopSvc(); err != nil {
		log.Error().Err(err).Msg("error stopping service")
		return fmt.Errorf("service stopped with error: %w", err)
	}
	return nil
}
