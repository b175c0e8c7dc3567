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

// Package api serves the companion's JSON-RPC 2.0 API over a websocket on
// the loopback interface. The desktop UI calls methods on it and receives
// every tracker and login event as a notification.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/heyclandestine/gamercred/pkg/api/methods"
	"github.com/heyclandestine/gamercred/pkg/api/middleware"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/models/requests"
	"github.com/heyclandestine/gamercred/pkg/api/validation"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/metrics"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/heyclandestine/gamercred/pkg/service/tracker"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	JSONRPCErrorParseError = models.ErrorObject{
		Code:    -32700,
		Message: "Parse error",
	}
	JSONRPCErrorInvalidRequest = models.ErrorObject{
		Code:    -32600,
		Message: "Invalid Request",
	}
	JSONRPCErrorMethodNotFound = models.ErrorObject{
		Code:    -32601,
		Message: "Method not found",
	}
	JSONRPCErrorInvalidParams = models.ErrorObject{
		Code:    -32602,
		Message: "Invalid params",
	}
	JSONRPCErrorInternalError = models.ErrorObject{
		Code:    -32603,
		Message: "Internal error",
	}
	JSONRPCErrorServerError = models.ErrorObject{
		Code:    -32000,
		Message: "Server error",
	}
)

const shutdownTimeout = 5 * time.Second

type ServerArgs struct {
	Platform      platforms.Platform
	Config        *config.Instance
	Settings      requests.SettingsStore
	Tracker       *tracker.Tracker
	Auth          requests.Authenticator
	Backend       requests.BackendReader
	History       requests.HistoryReader
	Notifications <-chan models.Notification
	// Clock drives rate limiting, defaults to the real clock.
	Clock clockwork.Clock
}

type Server struct {
	args    ServerArgs
	melody  *melody.Melody
	limiter *middleware.ClientRateLimiter
	router  chi.Router
	ctx     context.Context
}

func NewServer(args ServerArgs) *Server {
	s := &Server{
		args:    args,
		melody:  melody.New(),
		limiter: middleware.NewClientRateLimiter(args.Clock),
		ctx:     context.Background(),
	}

	s.melody.Upgrader.CheckOrigin = func(r *http.Request) bool {
		return originAllowed(r.Header.Get("Origin"), args.Config.AllowedOrigins())
	}
	s.melody.HandleConnect(func(session *melody.Session) {
		metrics.APIClients.Inc()
		log.Debug().Str("client", session.Request.RemoteAddr).Msg("api: client connected")
	})
	s.melody.HandleDisconnect(func(session *melody.Session) {
		metrics.APIClients.Dec()
		s.limiter.Forget(session.Request.RemoteAddr)
		log.Debug().Str("client", session.Request.RemoteAddr).Msg("api: client disconnected")
	})
	s.melody.HandleMessage(middleware.WebSocketRateLimit(s.limiter, s.handleWSMessage))

	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: append([]string{"http://localhost:*", "http://127.0.0.1:*"}, s.args.Config.AllowedOrigins()...),
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
	}))

	r.Get(config.APIPath, func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("api: websocket upgrade failed")
		}
	})
	r.With(middleware.HTTPRateLimit(s.limiter)).Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Handler is the HTTP handler, for serving the API from a test server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// originAllowed lets through non-browser clients (no Origin header),
// loopback pages and the configured extra origins.
func originAllowed(origin string, extra []string) bool {
	if origin == "" {
		return true
	}
	if slices.Contains(extra, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost":
		return true
	case "":
		return false
	default:
		ip := net.ParseIP(u.Hostname())
		return ip != nil && ip.IsLoopback()
	}
}

// Run listens on the loopback API port and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(s.args.Config.APIPort()))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	log.Info().Str("addr", addr).Msg("api: server listening")
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then closes every websocket
// session and the listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.ctx = ctx
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Broadcast(gctx)
		return nil
	})
	g.Go(func() error {
		s.limiter.RunCleanup(gctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := s.melody.Close(); err != nil && !errors.Is(err, melody.ErrClosed) {
			log.Debug().Err(err).Msg("api: closing websocket sessions")
		}
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	log.Info().Msg("api: server stopped")
	return err //nolint:wrapcheck // wrapped in the group funcs
}

// Broadcast forwards every notification to all connected clients until ctx
// is done or the channel closes.
func (s *Server) Broadcast(ctx context.Context) {
	if s.args.Notifications == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-s.args.Notifications:
			if !ok {
				return
			}
			data, err := json.Marshal(models.NotificationObject{
				JSONRPC: "2.0",
				Method:  n.Method,
				Params:  n.Params,
			})
			if err != nil {
				log.Error().Err(err).Msg("api: failed to marshal notification")
				continue
			}
			if err := s.melody.Broadcast(data); err != nil && !errors.Is(err, melody.ErrClosed) {
				log.Error().Err(err).Msg("api: failed to broadcast notification")
			}
		}
	}
}

func writeJSON(session *melody.Session, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("api: failed to marshal response")
		return
	}
	if err := session.Write(data); err != nil {
		log.Debug().Err(err).Msg("api: failed to write response")
	}
}

func sendResponse(session *melody.Session, id models.RPCID, result any) {
	writeJSON(session, models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func sendError(session *melody.Session, id models.RPCID, errObj models.ErrorObject) {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("api: sending error")
	writeJSON(session, models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	})
}

// errorObject maps a handler error to what the client sees. Only errors
// meant for the client carry their own message.
func errorObject(err error) models.ErrorObject {
	var verr *validation.Error
	var cerr *methods.ClientError
	switch {
	case errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams),
		errors.As(err, &verr):
		return models.ErrorObject{Code: JSONRPCErrorInvalidParams.Code, Message: err.Error()}
	case errors.As(err, &cerr):
		return models.ErrorObject{Code: JSONRPCErrorServerError.Code, Message: cerr.Error()}
	default:
		return JSONRPCErrorInternalError
	}
}

func (s *Server) env(ctx context.Context, session *melody.Session, req models.RequestObject) requests.RequestEnv {
	host, _, _ := net.SplitHostPort(session.Request.RemoteAddr)
	ip := net.ParseIP(host)
	return requests.RequestEnv{
		Context:        ctx,
		ServiceContext: s.ctx,
		Platform:       s.args.Platform,
		Config:         s.args.Config,
		Settings:       s.args.Settings,
		Tracker:        s.args.Tracker,
		Auth:           s.args.Auth,
		Backend:        s.args.Backend,
		History:        s.args.History,
		Params:         req.Params,
		ID:             *req.ID,
		IsLocal:        ip != nil && ip.IsLoopback(),
	}
}

func (s *Server) handleRequest(session *melody.Session, req models.RequestObject) {
	fn, ok := methods.Map[req.Method]
	if !ok {
		metrics.APIRequests.WithLabelValues("unknown", "not_found").Inc()
		sendError(session, *req.ID, JSONRPCErrorMethodNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, config.APIRequestTimeout)
	defer cancel()

	log.Debug().Str("method", req.Method).Str("id", req.ID.String()).Msg("api: received request")
	result, err := fn(s.env(ctx, session, req))
	if err != nil {
		metrics.APIRequests.WithLabelValues(req.Method, "error").Inc()
		errObj := errorObject(err)
		if errObj.Code == JSONRPCErrorInternalError.Code {
			log.Error().Err(err).Str("method", req.Method).Msg("api: method failed")
		}
		sendError(session, *req.ID, errObj)
		return
	}

	metrics.APIRequests.WithLabelValues(req.Method, "ok").Inc()
	sendResponse(session, *req.ID, result)
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	// heartbeat
	if strings.TrimSpace(string(msg)) == "ping" {
		if err := session.Write([]byte("pong")); err != nil {
			log.Debug().Err(err).Msg("api: failed to send pong")
		}
		return
	}

	if !json.Valid(msg) {
		sendError(session, models.RPCID{}, JSONRPCErrorParseError)
		return
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil {
		sendError(session, models.RPCID{}, JSONRPCErrorInvalidRequest)
		return
	}

	id := models.RPCID{}
	if req.ID != nil {
		id = *req.ID
	}
	if req.JSONRPC != "2.0" {
		sendError(session, id, JSONRPCErrorInvalidRequest)
		return
	}

	if req.Method == "" {
		var resp models.ResponseObject
		if err := json.Unmarshal(msg, &resp); err == nil && !resp.ID.IsAbsent() {
			// clients don't get requests from us, so responses are noise
			log.Debug().Str("id", resp.ID.String()).Msg("api: ignoring response from client")
			return
		}
		sendError(session, id, JSONRPCErrorInvalidRequest)
		return
	}

	if req.ID.IsAbsent() {
		log.Debug().Str("method", req.Method).Msg("api: ignoring notification from client")
		return
	}

	s.handleRequest(session, req)
}
