// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Token Store Keys

// The four keys the session manager owns inside the token store. The first
// three form the credential set and are always cleared together on sign-out;
// the device identifier deliberately survives so a guest who signs out and
// back in keeps the same backend identity.
const (
	// KeyAccessToken stores the bearer token sent on every API request.
	KeyAccessToken = "joury_access_token"

	// KeyRefreshToken stores the long-lived token used to mint new access
	// tokens.
	KeyRefreshToken = "joury_refresh_token"

	// KeyUserData stores the signed-in user's profile as JSON, so startup
	// can restore the session without a network round-trip.
	KeyUserData = "joury_user_data"

	// KeyDeviceID stores the stable UUIDv7 identifying this installation
	// for guest sessions.
	KeyDeviceID = "joury_device_id"
)

// # Endpoints

// Paths below the versioned API root.
const (
	endpointGoogleLogin = "/auth/google/login"
	endpointGuestLogin  = "/auth/guest/login"
	endpointRefresh     = "/auth/refresh"
	endpointMe          = "/auth/me"
	endpointLogout      = "/auth/logout"
)

// # Identity

// Provider tags recorded on the user profile.
const (
	ProviderGoogle = "google"
	ProviderGuest  = "guest"
)

// GuestDisplayName is the fixed display name for anonymous sessions.
const GuestDisplayName = "Guest User"
