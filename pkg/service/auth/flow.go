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

package auth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	CallbackPath    = "/callback"
	shutdownTimeout = 2 * time.Second
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>GamerCred</title></head>
<body style="font-family:sans-serif;text-align:center;margin-top:4em">
<h2>{{.Title}}</h2><p>{{.Message}}</p>
</body></html>`))

type callback struct {
	err  error
	code string
}

// flow is one pending login. The callback handler hands its result to the
// flow and then waits for the final outcome so the browser tab can show it.
type flow struct {
	outcome  error
	results  chan callback
	finished chan struct{}
	state    string
}

func parseCallback(q url.Values, state string) callback {
	if code := q.Get("error"); code != "" {
		return callback{err: &ProviderError{
			Code:        code,
			Description: q.Get("error_description"),
		}}
	}
	if q.Get("state") != state {
		return callback{err: ErrStateMismatch}
	}
	code := q.Get("code")
	if code == "" {
		return callback{err: ErrMissingCode}
	}
	return callback{code: code}
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := pageTmpl.Execute(w, struct{ Title, Message string }{title, message})
	if err != nil {
		log.Debug().Err(err).Msg("auth: failed to write callback page")
	}
}

func (f *flow) handleCallback(w http.ResponseWriter, r *http.Request) {
	select {
	case f.results <- parseCallback(r.URL.Query(), f.state):
	default:
		writePage(w, http.StatusConflict, "Already handled", "This login has already been completed.")
		return
	}

	select {
	case <-f.finished:
	case <-r.Context().Done():
		return
	}

	if f.outcome != nil {
		writePage(w, http.StatusBadRequest, "Login failed", UserMessage(f.outcome))
		return
	}
	writePage(w, http.StatusOK, "Logged in", "You can close this tab and return to GamerCred.")
}

// runFlow listens on the loopback redirect port, sends the user to the
// provider and waits for the redirect. The listener is closed on every
// return path.
func (a *Authenticator) runFlow(ctx context.Context) (user *models.User, err error) {
	if a.cfg.AuthClientID() == "" {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.LoginTimeout())
	defer cancel()

	var lc net.ListenConfig
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(a.cfg.RedirectPort()))
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth redirect on %s: %w", addr, err)
	}

	f := &flow{
		state:    uuid.NewString(),
		results:  make(chan callback, 1),
		finished: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Get(CallbackPath, f.handleCallback)
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		if serr := srv.Serve(ln); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			log.Warn().Err(serr).Msg("auth: redirect listener failed")
		}
	}()
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if serr := srv.Shutdown(sctx); serr != nil {
			log.Debug().Err(serr).Msg("auth: redirect listener shutdown")
			_ = srv.Close()
		}
		<-served
	}()
	defer func() {
		f.outcome = err
		close(f.finished)
	}()

	redirectURL := "http://" + ln.Addr().String() + CallbackPath
	verifier := oauth2.GenerateVerifier()
	authURL := a.oauthConfig(redirectURL).AuthCodeURL(f.state, oauth2.S256ChallengeOption(verifier))

	log.Info().Str("redirect", redirectURL).Msg("auth: waiting for oauth redirect")
	if err := a.open(ctx, authURL); err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	var cb callback
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrLoginTimeout
		}
		return nil, fmt.Errorf("login cancelled: %w", ctx.Err())
	case cb = <-f.results:
	}
	if cb.err != nil {
		return nil, cb.err
	}

	tok, err := a.ExchangeCode(ctx, cb.code, redirectURL, verifier)
	if err != nil {
		return nil, err
	}

	user, err = a.GetUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	cred := Credential{
		AccessToken: tok.AccessToken,
		UserID:      user.ID,
		Username:    user.Username,
		Avatar:      user.Avatar,
	}
	if err := a.store.SetMany(ctx, cred.values()); err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}
	return user, nil
}
