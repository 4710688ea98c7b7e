// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// Identity is the proof of identity an external provider hands back: the
// verified ID token the backend will validate, plus the profile fields used
// to seed the account.
type Identity struct {
	IDToken   string
	Name      string
	Email     string
	AvatarURL string
}

// IdentityProvider runs an external sign-in flow and returns the resulting
// identity. Implementations own the full user interaction; the session
// manager only sees the outcome.
type IdentityProvider interface {
	Authenticate(ctx context.Context) (*Identity, error)
}

// CodeSupplier bridges the out-of-band part of an OAuth flow: it receives the
// authorization URL the user must visit and returns the code the provider
// handed back. The host application decides how — opening a browser, showing
// a QR code, reading a redirect.
type CodeSupplier func(ctx context.Context, authURL string) (code string, err error)
