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

// Package metrics exposes companion counters in Prometheus format on the
// local API server's /metrics route.
package metrics

import (
	"net/http"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamercred_polls_total",
			Help: "Foreground window polls by result",
		},
		[]string{"result"},
	)

	PollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamercred_poll_duration_seconds",
			Help:    "Time taken to resolve the foreground process",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamercred_events_total",
			Help: "Events published to the UI by method",
		},
		[]string{"method"},
	)

	SessionsLogged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gamercred_sessions_logged_total",
			Help: "Sessions successfully logged to the backend",
		},
	)

	HoursLogged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gamercred_hours_logged_total",
			Help: "Hours successfully logged to the backend",
		},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamercred_logins_total",
			Help: "OAuth login attempts by result",
		},
		[]string{"result"},
	)

	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamercred_backend_requests_total",
			Help: "Requests to the GamerCred backend by endpoint and status class",
		},
		[]string{"endpoint", "status"},
	)

	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamercred_api_requests_total",
			Help: "JSON-RPC requests handled by method and result",
		},
		[]string{"method", "result"},
	)

	APIClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamercred_api_clients",
			Help: "Connected API websocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(
		PollsTotal,
		PollDuration,
		EventsTotal,
		SessionsLogged,
		HoursLogged,
		LoginsTotal,
		BackendRequests,
		APIRequests,
		APIClients,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEvents counts every notification read from ns until it closes.
func RecordEvents(ns <-chan models.Notification) {
	for n := range ns {
		EventsTotal.WithLabelValues(n.Method).Inc()
	}
}

// StatusClass buckets an HTTP status into "2xx", "4xx" and so on, or
// "error" when no response was received.
func StatusClass(code int) string {
	switch {
	case code <= 0:
		return "error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
