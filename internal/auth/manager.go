// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth owns the session lifecycle: sign-in (Google or guest), startup
restoration, token refresh, and sign-out.

Architecture:

  - Manager: Single owner of the session. All state transitions are
    serialized; concurrent callers observe consistent snapshots.
  - IdentityProvider: Port for external sign-in flows (Google OIDC shipped,
    others pluggable).
  - Token custody: Credentials live in the tokenstore; the manager is the
    only writer.

The manager implements the API client's TokenSource and AuthExpiryNotifier
ports, closing the loop: requests get their bearer token from here, and a 401
lands back here as an AuthExpired call that discards the local session.

Local token expiry is advisory. Whether a session is still valid is decided
by backend verification (`/auth/me`), never by inspecting the token clock.
*/
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/joury-go/internal/api"
	"github.com/taibuivan/joury-go/internal/tokenstore"
	"github.com/taibuivan/joury-go/pkg/uuid"
)

// Manager owns the process-wide session: at most one, or none.
//
// Public operations are serialized end to end by opMu, so a refresh can never
// interleave with a sign-in. AuthExpired is the one entry point that bypasses
// opMu: it only clears local state, never touches the network, and may fire
// from inside an in-flight operation's own request.
type Manager struct {
	client   *api.Client
	store    tokenstore.Store
	provider IdentityProvider
	log      *slog.Logger

	// opMu serializes the public operations end to end.
	opMu sync.Mutex

	// mu guards the fields below.
	mu          sync.RWMutex
	generation  uint64
	accessToken string
	snapshot    Snapshot
}

// NewManager builds a session manager. The identity provider may be nil when
// the embedding only uses guest sessions.
func NewManager(client *api.Client, store tokenstore.Store, provider IdentityProvider, log *slog.Logger) *Manager {
	return &Manager{
		client:   client,
		store:    store,
		provider: provider,
		log:      log,
		snapshot: Snapshot{State: StateLoading},
	}
}

// # Read Side

// Snapshot returns a copy of the current session view.
func (manager *Manager) Snapshot() Snapshot {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.snapshot
}

// CurrentAccessToken implements the API client's TokenSource port. It is
// non-blocking: the token is served from memory, never from storage.
func (manager *Manager) CurrentAccessToken() (string, bool) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.accessToken, manager.accessToken != ""
}

// # Sign-In

/*
SignInWithGoogle runs the external Google flow and establishes a session.

Description: Obtains a verified identity from the injected provider, exchanges
it with the backend, persists the resulting credential pair and user profile,
and publishes the Authenticated state. Any failure publishes the Error state
and is returned to the caller.

Parameters:
  - ctx: context.Context

Returns:
  - *User: The signed-in profile
  - error: A [*Error] classifying the failure
*/
func (manager *Manager) SignInWithGoogle(ctx context.Context) (*User, error) {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()

	if manager.provider == nil {
		return nil, manager.setError(ProviderAuthFailed(errors.New("no identity provider configured")))
	}

	gen := manager.beginOp()

	identity, err := manager.provider.Authenticate(ctx)
	if err != nil {
		return nil, manager.setError(ProviderAuthFailed(err))
	}

	response, err := api.Post[AuthResponse](ctx, manager.client, endpointGoogleLogin, googleLoginRequest{
		IDToken:   identity.IDToken,
		Name:      identity.Name,
		Email:     identity.Email,
		AvatarURL: identity.AvatarURL,
	})
	if err != nil {
		return nil, manager.setError(mapAPIError(err))
	}

	user, err := manager.applyAuthResponse(ctx, gen, &response)
	if err != nil {
		return nil, err
	}

	manager.log.Info("signed in",
		slog.String("provider", ProviderGoogle),
		slog.String("user_id", user.ID),
	)
	return user, nil
}

/*
SignInAsGuest establishes an anonymous session bound to this installation.

Description: Reuses the persisted device identifier (minting a UUIDv7 on first
use) so a guest keeps the same backend identity across sessions, then signs in
with it. The profile comes back guest-flagged.

Parameters:
  - ctx: context.Context

Returns:
  - *User: The guest profile
  - error: A [*Error] classifying the failure
*/
func (manager *Manager) SignInAsGuest(ctx context.Context) (*User, error) {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()

	gen := manager.beginOp()

	deviceID, err := manager.deviceID(ctx)
	if err != nil {
		return nil, manager.setError(NewStoreError(err))
	}

	response, err := api.Post[AuthResponse](ctx, manager.client, endpointGuestLogin, guestLoginRequest{
		DeviceID: deviceID,
		Name:     GuestDisplayName,
	})
	if err != nil {
		return nil, manager.setError(mapAPIError(err))
	}

	user, err := manager.applyAuthResponse(ctx, gen, &response)
	if err != nil {
		return nil, err
	}

	manager.log.Info("signed in",
		slog.String("provider", ProviderGuest),
		slog.String("user_id", user.ID),
	)
	return user, nil
}

// deviceID returns the stable installation identifier, minting and persisting
// one on first use.
func (manager *Manager) deviceID(ctx context.Context) (string, error) {

	raw, err := manager.store.Get(ctx, KeyDeviceID)
	if err == nil {
		return string(raw), nil
	}
	if !errors.Is(err, tokenstore.ErrNotFound) {
		return "", err
	}

	id := uuid.New()
	if err := manager.store.Set(ctx, KeyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

// # Sign-Out

// SignOut ends the session. The backend logout is best-effort and only
// attempted while a token is actually held; the local credentials are
// cleared unconditionally and the call never fails.
func (manager *Manager) SignOut(ctx context.Context) {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()

	if _, ok := manager.CurrentAccessToken(); ok {
		if _, err := api.Delete[api.Empty](ctx, manager.client, endpointLogout); err != nil {
			manager.log.Debug("backend logout failed, clearing local session anyway",
				slog.String("error", err.Error()),
			)
		}
	}

	manager.clearSession(ctx)
	manager.log.Info("signed out")
}

// AuthExpired implements the API client's AuthExpiryNotifier port: the
// backend rejected the current credentials, so the local session is gone.
//
// Deliberately local-only: no opMu (a 401 can fire from inside an in-flight
// operation's own request) and no network (the credentials just proved dead).
func (manager *Manager) AuthExpired(ctx context.Context) {
	manager.log.Warn("credentials rejected by backend, discarding session")
	manager.clearSession(ctx)
}

// clearSession deletes the three credential keys and publishes the
// Unauthenticated state. The device identifier survives.
func (manager *Manager) clearSession(ctx context.Context) {

	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserData} {
		if err := manager.store.Delete(ctx, key); err != nil {
			manager.log.Error("failed to delete credential",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	manager.mu.Lock()
	manager.generation++
	manager.accessToken = ""
	manager.snapshot = Snapshot{State: StateUnauthenticated}
	manager.mu.Unlock()
}

// # Refresh

/*
RefreshIfNeeded exchanges the persisted refresh token for fresh credentials.

Description: With no persisted refresh token the session is simply expired.
With one, a failed exchange means the refresh token itself is dead, so the
local session is cleared before the expiry is reported. A refresh that
completes after a concurrent credential rejection is discarded.

Parameters:
  - ctx: context.Context

Returns:
  - error: nil on success, otherwise a [*Error] (typically TokenExpired)
*/
func (manager *Manager) RefreshIfNeeded(ctx context.Context) error {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()
	return manager.refreshInner(ctx)
}

// refreshInner is the refresh body, shared with Bootstrap. Callers hold opMu.
func (manager *Manager) refreshInner(ctx context.Context) error {

	gen := manager.beginOp()

	raw, err := manager.store.Get(ctx, KeyRefreshToken)
	if errors.Is(err, tokenstore.ErrNotFound) {
		manager.clearSession(ctx)
		return TokenExpired(err)
	}
	if err != nil {
		return manager.setError(NewStoreError(err))
	}

	response, err := api.Post[AuthResponse](ctx, manager.client, endpointRefresh, refreshRequest{
		RefreshToken: string(raw),
	})
	if err != nil {
		// A refresh token the backend will not honor is dead weight.
		manager.clearSession(ctx)
		return TokenExpired(err)
	}

	if _, err := manager.applyAuthResponse(ctx, gen, &response); err != nil {
		return err
	}

	manager.log.Info("session refreshed")
	return nil
}

// # Startup

/*
Bootstrap restores the session at startup.

Description: With no persisted token or cached profile the state settles on
Unauthenticated. Otherwise the token is verified against the backend; success
restores the session from the cached profile, failure falls back to a refresh,
and a failed refresh ends Unauthenticated. Expected outcomes — including an
expired session — return nil; only storage faults surface as errors.

Parameters:
  - ctx: context.Context

Returns:
  - error: nil unless credential storage itself failed
*/
func (manager *Manager) Bootstrap(ctx context.Context) error {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()

	token, err := manager.store.Get(ctx, KeyAccessToken)
	if errors.Is(err, tokenstore.ErrNotFound) {
		manager.settleUnauthenticated()
		return nil
	}
	if err != nil {
		return manager.setError(NewStoreError(err))
	}

	userRaw, err := manager.store.Get(ctx, KeyUserData)
	if errors.Is(err, tokenstore.ErrNotFound) {
		// Half a session is no session.
		manager.clearSession(ctx)
		return nil
	}
	if err != nil {
		return manager.setError(NewStoreError(err))
	}

	// Load the token into memory so the verification request is
	// authenticated, and capture the generation to detect a 401 firing
	// AuthExpired underneath us.
	manager.mu.Lock()
	manager.accessToken = string(token)
	manager.snapshot.State = StateLoading
	manager.snapshot.Err = nil
	gen := manager.generation
	manager.mu.Unlock()

	verified, err := api.Get[User](ctx, manager.client, endpointMe, nil)
	if err != nil {
		// Verification failed; a refresh is the last chance. Its failure
		// path has already cleared the session.
		if rerr := manager.refreshInner(ctx); rerr != nil {
			manager.log.Info("no session restored", slog.String("reason", rerr.Error()))
		}
		return nil
	}

	// The cached profile is authoritative for restoration; the verified
	// response only backs it up if the cache is unreadable.
	user := new(User)
	if uerr := json.Unmarshal(userRaw, user); uerr != nil {
		*user = verified
	}

	manager.mu.Lock()
	restored := manager.generation == gen
	if restored {
		manager.generation++
		manager.snapshot = Snapshot{
			State:                StateAuthenticated,
			User:                 user,
			AccessTokenExpiresAt: tokenExpiry(string(token)),
		}
	}
	manager.mu.Unlock()

	if restored {
		manager.log.Info("session restored", slog.String("user_id", user.ID))
	}
	return nil
}

// # Internals

// beginOp publishes the Loading state and captures the generation the
// operation started under.
func (manager *Manager) beginOp() uint64 {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.snapshot.State = StateLoading
	manager.snapshot.Err = nil
	return manager.generation
}

// setError publishes the Error state and returns err for direct re-throw.
func (manager *Manager) setError(err *Error) error {
	manager.mu.Lock()
	manager.snapshot.State = StateError
	manager.snapshot.Err = err
	manager.mu.Unlock()
	return err
}

// settleUnauthenticated publishes Unauthenticated without touching storage.
func (manager *Manager) settleUnauthenticated() {
	manager.mu.Lock()
	manager.accessToken = ""
	manager.snapshot = Snapshot{State: StateUnauthenticated}
	manager.mu.Unlock()
}

// applyAuthResponse persists fresh credentials and publishes Authenticated.
//
// The generation check discards results that arrive after a concurrent
// credential rejection: the freshly written keys are removed again and the
// caller gets TokenExpired instead of a resurrected session.
func (manager *Manager) applyAuthResponse(ctx context.Context, gen uint64, response *AuthResponse) (*User, error) {

	userJSON, err := json.Marshal(response.User)
	if err != nil {
		return nil, manager.setError(Unknown(err))
	}

	writes := []struct {
		key   string
		value []byte
	}{
		{KeyAccessToken, []byte(response.AccessToken)},
		{KeyRefreshToken, []byte(response.RefreshToken)},
		{KeyUserData, userJSON},
	}
	for _, write := range writes {
		if err := manager.store.Set(ctx, write.key, write.value); err != nil {
			// No partial credential sets.
			manager.clearSession(ctx)
			return nil, manager.setError(NewStoreError(err))
		}
	}

	user := response.User

	manager.mu.Lock()
	if manager.generation != gen {
		manager.mu.Unlock()
		manager.clearSession(ctx)
		return nil, TokenExpired(errors.New("session changed while operation was in flight"))
	}
	manager.generation++
	manager.accessToken = response.AccessToken
	manager.snapshot = Snapshot{
		State:                StateAuthenticated,
		User:                 &user,
		AccessTokenExpiresAt: manager.expiryOf(response),
	}
	manager.mu.Unlock()

	return &user, nil
}

// expiryOf derives the advisory expiry: the token's own exp claim when it
// parses as a JWT, the expires_in hint otherwise, zero when neither exists.
func (manager *Manager) expiryOf(response *AuthResponse) time.Time {

	if expiry := tokenExpiry(response.AccessToken); !expiry.IsZero() {
		return expiry
	}
	if response.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(response.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// tokenExpiry extracts the exp claim without verifying the signature. Only
// the backend can vouch for the token; this is scheduling metadata.
func tokenExpiry(token string) time.Time {

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}
	}
	return expiry.Time
}
