package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vidlens/backend/internal/apiclient"
	"github.com/vidlens/backend/internal/logging"
	"github.com/vidlens/backend/internal/token"
)

var (
	// ErrNoToken indicates the upstream auth response carried no usable token.
	ErrNoToken = errors.New("auth response carried no token")
	// ErrRefreshInProgress guards against a refresh request recursively
	// triggering another refresh.
	ErrRefreshInProgress = errors.New("token refresh already in progress")
)

// Auth drives the upstream guest-session lifecycle: anonymous login, token
// refresh, verification and logout. It implements the request pipeline's
// Refresher so an authenticated 401 can be healed in flight.
type Auth struct {
	client *apiclient.Client
	tokens *token.Store

	mu         sync.Mutex
	refreshing bool
}

// NewAuth wires the auth service to the shared pipeline and token store.
func NewAuth(client *apiclient.Client, tokens *token.Store) *Auth {
	return &Auth{client: client, tokens: tokens}
}

type tokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func (r tokenResponse) value() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

func (r tokenResponse) ttl() time.Duration {
	if r.ExpiresIn > 0 {
		return time.Duration(r.ExpiresIn) * time.Second
	}
	return 0
}

// GuestLogin starts a fresh anonymous session and persists its token.
func (a *Auth) GuestLogin(ctx context.Context) (string, error) {
	body, err := a.client.Do(ctx, "POST", "/auth/guest-login", nil, nil)
	if err != nil {
		return "", fmt.Errorf("guest login: %w", err)
	}

	resp, err := parseTokenResponse(body)
	if err != nil {
		return "", fmt.Errorf("guest login: %w", err)
	}
	if err := a.tokens.SetToken(resp.value(), resp.ttl()); err != nil {
		return "", fmt.Errorf("persist guest token: %w", err)
	}

	logging.FromContext(ctx).Info("guest session started")
	return resp.value(), nil
}

// RefreshToken exchanges the current token for a fresh one and persists it.
// A refresh request that itself comes back 401 must not cascade, so
// re-entrant calls fail immediately.
func (a *Auth) RefreshToken(ctx context.Context, current string) (string, error) {
	a.mu.Lock()
	if a.refreshing {
		a.mu.Unlock()
		return "", ErrRefreshInProgress
	}
	a.refreshing = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.refreshing = false
		a.mu.Unlock()
	}()

	body, err := a.client.Do(ctx, "POST", "/auth/refresh-token", nil, map[string]string{"token": current})
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	resp, err := parseTokenResponse(body)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if err := a.tokens.SetToken(resp.value(), resp.ttl()); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	logging.FromContext(ctx).Info("guest token refreshed")
	return resp.value(), nil
}

// EnsureSession makes sure a usable token is on hand: it logs in when none
// is stored and proactively refreshes one nearing expiry. A failed proactive
// refresh is not fatal while the current token still works.
func (a *Auth) EnsureSession(ctx context.Context) error {
	if _, ok := a.tokens.Token(); !ok {
		_, err := a.GuestLogin(ctx)
		return err
	}
	if a.tokens.ShouldRefresh() {
		current, _ := a.tokens.Token()
		if _, err := a.RefreshToken(ctx, current); err != nil {
			logging.FromContext(ctx).Warn("proactive token refresh failed", "error", err)
		}
	}
	return nil
}

// Session describes the current guest session for the dashboard header.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	UserType      string    `json:"userType,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt,omitempty"`
	NeedsRefresh  bool      `json:"needsRefresh"`
}

// CurrentSession reports the locally known session state without an
// upstream round trip.
func (a *Auth) CurrentSession() Session {
	tok, ok := a.tokens.Token()
	if !ok {
		return Session{}
	}

	s := Session{Authenticated: true, NeedsRefresh: a.tokens.ShouldRefresh()}
	if claims, err := token.Decode(tok); err == nil {
		s.UserType = claims.UserType
		if claims.Exp > 0 {
			s.ExpiresAt = time.Unix(claims.Exp, 0).UTC()
		}
	}
	return s
}

// Logout ends the upstream session when reachable and always purges the
// local token.
func (a *Auth) Logout(ctx context.Context) {
	if _, ok := a.tokens.Token(); ok {
		if _, err := a.client.Do(ctx, "POST", "/auth/logout", nil, nil); err != nil {
			logging.FromContext(ctx).Warn("upstream logout failed", "error", err)
		}
	}
	a.tokens.Clear()
}

func parseTokenResponse(body []byte) (tokenResponse, error) {
	payload := unwrapObject(body)
	if payload == nil {
		return tokenResponse{}, ErrNoToken
	}

	var resp tokenResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return tokenResponse{}, fmt.Errorf("decode auth response: %w", err)
	}
	if resp.value() == "" {
		return tokenResponse{}, ErrNoToken
	}
	return resp, nil
}
