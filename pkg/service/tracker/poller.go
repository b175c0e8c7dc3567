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

package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heyclandestine/gamercred/pkg/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval = 5 * time.Second
	// DefaultQueryTimeout bounds one foreground window query so a hung
	// helper process can't stall later ticks.
	DefaultQueryTimeout = 2 * time.Second
)

// ErrPoll marks a failed foreground window query. Poll errors are logged
// and skipped; they never change tracker state.
var ErrPoll = errors.New("active window query failed")

// WindowSource reports the process owning the foreground window.
type WindowSource interface {
	ActiveWindow(ctx context.Context) (string, error)
}

// Poller samples a WindowSource on a fixed interval.
type Poller struct {
	clock        clockwork.Clock
	source       WindowSource
	queryTimeout time.Duration
}

func NewPoller(clock clockwork.Clock, source WindowSource) *Poller {
	return &Poller{
		clock:        clock,
		source:       source,
		queryTimeout: DefaultQueryTimeout,
	}
}

// Run samples every interval and passes each successful sample to handle
// until ctx is done. The first sample is taken one interval after Run
// starts. handle runs on the poller goroutine, so ticks never overlap.
func (p *Poller) Run(ctx context.Context, interval time.Duration, handle func(PollSample)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", interval).Msg("tracker: poller started")
	defer log.Debug().Msg("tracker: poller stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			sample, err := p.Sample(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Debug().Err(err).Msg("tracker: skipping poll")
				continue
			}
			handle(sample)
		}
	}
}

// Sample queries the source once.
func (p *Poller) Sample(ctx context.Context) (PollSample, error) {
	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	start := p.clock.Now()
	name, err := p.source.ActiveWindow(qctx)
	metrics.PollDuration.Observe(p.clock.Since(start).Seconds())
	if err != nil {
		metrics.PollsTotal.WithLabelValues("error").Inc()
		return PollSample{}, fmt.Errorf("%w: %w", ErrPoll, err)
	}
	metrics.PollsTotal.WithLabelValues("ok").Inc()

	return PollSample{ProcessName: name, Timestamp: p.clock.Now()}, nil
}
