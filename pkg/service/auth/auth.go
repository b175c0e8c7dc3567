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

// Package auth logs the user in with Discord using the OAuth2
// authorization code flow with PKCE, and keeps the resulting credential in
// the local store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/heyclandestine/gamercred/pkg/api/models"
	"github.com/heyclandestine/gamercred/pkg/api/notifications"
	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/database/store"
	"github.com/heyclandestine/gamercred/pkg/helpers"
	"github.com/heyclandestine/gamercred/pkg/helpers/syncutil"
	"github.com/heyclandestine/gamercred/pkg/metrics"
	"github.com/heyclandestine/gamercred/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	statusTimeout = 15 * time.Second
	bodyLimit     = 4096
)

// CredentialStore is the part of store.Store the authenticator needs.
type CredentialStore interface {
	GetString(ctx context.Context, key string) (string, error)
	SetMany(ctx context.Context, values map[string]any) error
	SetManyIf(ctx context.Context, key string, want any, values map[string]any) (bool, error)
	DeleteMany(ctx context.Context, keys ...string) error
	DeleteManyIf(ctx context.Context, key string, want any, keys ...string) (bool, error)
}

// Opener shows url to the user, normally in the system browser.
type Opener func(ctx context.Context, url string) error

// Credential is everything persisted after a successful login.
type Credential struct {
	AccessToken string
	UserID      string
	Username    string
	Avatar      string
}

func (c Credential) values() map[string]any {
	return map[string]any{
		store.KeyDiscordToken:    c.AccessToken,
		store.KeyDiscordUserID:   c.UserID,
		store.KeyDiscordUsername: c.Username,
		store.KeyDiscordAvatar:   c.Avatar,
	}
}

type Args struct {
	Config *config.Instance
	Store  CredentialStore
	Sink   notifications.Sink
	// Open defaults to the system browser.
	Open Opener
	// Client defaults to an httpclient.Client with the backend timeout.
	Client *httpclient.Client
}

type Authenticator struct {
	cfg    *config.Instance
	store  CredentialStore
	sink   notifications.Sink
	open   Opener
	client *httpclient.Client
	cancel context.CancelFunc
	status singleflight.Group
	wg     sync.WaitGroup
	mu     syncutil.Mutex
	active bool
}

func New(args Args) *Authenticator {
	a := &Authenticator{
		cfg:    args.Config,
		store:  args.Store,
		sink:   args.Sink,
		open:   args.Open,
		client: args.Client,
	}
	if a.sink == nil {
		a.sink = notifications.Discard{}
	}
	if a.open == nil {
		a.open = func(_ context.Context, url string) error {
			return helpers.OpenBrowser(url)
		}
	}
	if a.client == nil {
		a.client = httpclient.NewClient(a.cfg.BackendTimeout(), nil)
	}
	return a
}

func (a *Authenticator) begin(cancel context.CancelFunc) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active {
		return false
	}
	a.active = true
	a.cancel = cancel
	return true
}

func (a *Authenticator) end() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = false
	a.cancel = nil
}

// InProgress reports whether a login flow is waiting on the user.
func (a *Authenticator) InProgress() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Login runs the whole flow and blocks until it finishes. The outcome is
// also published as login-successful or login-failed.
func (a *Authenticator) Login(ctx context.Context) (*models.User, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !a.begin(cancel) {
		return nil, ErrLoginInProgress
	}
	defer a.end()
	return a.login(ctx)
}

// StartLogin runs the flow in the background and returns once it has
// started. The result is only reported through events. ctx bounds the
// whole flow, not just this call.
func (a *Authenticator) StartLogin(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	if !a.begin(cancel) {
		cancel()
		return ErrLoginInProgress
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()
		defer a.end()
		_, _ = a.login(ctx)
	}()
	return nil
}

// Close cancels a running login and waits for it to finish.
func (a *Authenticator) Close() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Authenticator) login(ctx context.Context) (*models.User, error) {
	user, err := a.runFlow(ctx)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrUserDenied) {
			result = "denied"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		log.Warn().Err(err).Msg("auth: login failed")
		notifications.LoginFailed(a.sink, UserMessage(err))
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	log.Info().Str("user", user.Username).Msg("auth: login successful")
	notifications.LoginSuccessful(a.sink, *user)
	return user, nil
}

func (a *Authenticator) oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.AuthClientID(),
		ClientSecret: a.cfg.AuthClientSecret(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.cfg.AuthorizeURL(),
			TokenURL:  a.cfg.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      strings.Fields(a.cfg.AuthScope()),
	}
}

// ExchangeCode trades an authorization code for an access token. It is
// never retried: codes are single use.
func (a *Authenticator) ExchangeCode(
	ctx context.Context,
	code string,
	redirectURL string,
	verifier string,
) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client.Client)

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	tok, err := a.oauthConfig(redirectURL).Exchange(ctx, code, opts...)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, &HTTPError{
				Op:     ErrTokenExchange,
				Status: re.Response.StatusCode,
				Body:   strings.TrimSpace(string(re.Body)),
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	return tok, nil
}

type discordUser struct {
	Avatar   *string `json:"avatar"`
	ID       string  `json:"id"`
	Username string  `json:"username"`
}

// GetUserInfo fetches the profile that token belongs to.
func (a *Authenticator) GetUserInfo(ctx context.Context, token string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.UserInfoURL(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("auth: failed to close user info body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Op:     ErrUserInfo,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(httpclient.ReadBody(resp, bodyLimit)),
		}
	}

	var du discordUser
	if err := json.NewDecoder(resp.Body).Decode(&du); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %w", ErrUserInfo, err)
	}
	if du.ID == "" {
		return nil, fmt.Errorf("%w: response has no user id", ErrUserInfo)
	}

	user := &models.User{ID: du.ID, Username: du.Username}
	if du.Avatar != nil {
		user.Avatar = *du.Avatar
	}
	return user, nil
}

// StoredToken returns the saved access token, or "" if not logged in.
func (a *Authenticator) StoredToken(ctx context.Context) (string, error) {
	token, err := a.store.GetString(ctx, store.KeyDiscordToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// CheckLoginStatus validates the stored token against the provider. A
// nil user means not logged in. A rejected token deletes the whole
// credential, unless ctx was cancelled first. Concurrent calls share one
// request.
func (a *Authenticator) CheckLoginStatus(ctx context.Context) (*models.User, error) {
	v, err, _ := a.status.Do("status", func() (any, error) {
		return a.checkLoginStatus(ctx)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped in checkLoginStatus
	}
	user, _ := v.(*models.User)
	return user, nil
}

// checkLoginStatus only touches the credential if it still holds the token
// that was validated, so a logout or a new login during the request wins.
func (a *Authenticator) checkLoginStatus(ctx context.Context) (*models.User, error) {
	wctx := context.WithoutCancel(ctx)
	token, err := a.StoredToken(wctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil //nolint:nilnil // nil user means logged out
	}

	rctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	user, err := a.GetUserInfo(rctx, token)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("login status check aborted: %w", cerr)
		}
		log.Warn().Err(fmt.Errorf("%w: %w", ErrTokenInvalid, err)).Msg("auth: clearing stored credential")
		cleared, derr := a.store.DeleteManyIf(wctx, store.KeyDiscordToken, token, store.CredentialKeys...)
		if derr != nil {
			return nil, fmt.Errorf("failed to clear credential: %w", derr)
		}
		if !cleared {
			return a.storedUser(wctx)
		}
		return nil, nil //nolint:nilnil // nil user means logged out
	}

	refreshed, err := a.store.SetManyIf(wctx, store.KeyDiscordToken, token, map[string]any{
		store.KeyDiscordUserID:   user.ID,
		store.KeyDiscordUsername: user.Username,
		store.KeyDiscordAvatar:   user.Avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh profile: %w", err)
	}
	if !refreshed {
		log.Debug().Msg("auth: credential changed during status check")
		return a.storedUser(wctx)
	}
	return user, nil
}

// storedUser returns the cached profile, or nil if not logged in.
func (a *Authenticator) storedUser(ctx context.Context) (*models.User, error) {
	token, err := a.StoredToken(ctx)
	if err != nil || token == "" {
		return nil, err
	}
	user := &models.User{}
	for key, dst := range map[string]*string{
		store.KeyDiscordUserID:   &user.ID,
		store.KeyDiscordUsername: &user.Username,
		store.KeyDiscordAvatar:   &user.Avatar,
	} {
		v, err := a.store.GetString(ctx, key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		*dst = v
	}
	return user, nil
}

// Logout deletes the stored credential. It is safe to call when not
// logged in.
func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.store.DeleteMany(ctx, store.CredentialKeys...); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	log.Info().Msg("auth: logged out")
	return nil
}
