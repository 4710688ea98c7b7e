// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/taibuivan/joury-go/internal/platform/config"
	"github.com/taibuivan/joury-go/pkg/uuid"
)

// googleIssuer is the OIDC discovery root for Google accounts.
const googleIssuer = "https://accounts.google.com"

// GoogleProvider implements [IdentityProvider] with Google's OIDC flow:
// authorization-code exchange followed by local ID-token verification against
// Google's published keys. The browser/redirect leg is delegated to the
// injected [CodeSupplier].
type GoogleProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	supply   CodeSupplier
	log      *slog.Logger
}

// NewGoogleProvider discovers Google's OIDC endpoints and prepares the OAuth
// configuration. It fails when the client ID is missing or discovery is
// unreachable.
func NewGoogleProvider(ctx context.Context, cfg *config.Config, supply CodeSupplier, log *slog.Logger) (*GoogleProvider, error) {

	if cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("google_provider: missing client id")
	}
	if supply == nil {
		return nil, fmt.Errorf("google_provider: missing code supplier")
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google_provider: oidc_discovery_failed: %w", err)
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID}),
		supply:   supply,
		log:      log,
	}, nil
}

/*
Authenticate runs the full Google sign-in flow.

Description: Builds the authorization URL with a fresh state nonce, hands it
to the code supplier, exchanges the returned code for tokens, and verifies the
ID token locally before releasing it to the caller.

Parameters:
  - ctx: context.Context

Returns:
  - *Identity: The verified identity and profile claims
  - error: Any failure in the exchange or verification
*/
func (provider *GoogleProvider) Authenticate(ctx context.Context) (*Identity, error) {

	// Fresh nonce per flow; the supplier's redirect handler is expected to
	// check it round-tripped intact.
	state := uuid.New()
	authURL := provider.oauth.AuthCodeURL(state)

	provider.log.Debug("starting google sign-in flow")

	code, err := provider.supply(ctx, authURL)
	if err != nil {
		return nil, fmt.Errorf("google_provider: authorization_code_not_supplied: %w", err)
	}

	token, err := provider.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google_provider: code_exchange_failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("google_provider: token response carried no id_token")
	}

	idToken, err := provider.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google_provider: id_token_verification_failed: %w", err)
	}

	var claims struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google_provider: claims_decode_failed: %w", err)
	}

	return &Identity{
		IDToken:   rawIDToken,
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: claims.Picture,
	}, nil
}
