// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # User Model

// NotificationSettings holds the per-user notification toggles.
type NotificationSettings struct {
	Enabled      bool   `json:"enabled"`
	ReminderTime string `json:"reminder_time,omitempty"`
}

// Preferences is the user's settings blob, mirrored verbatim from the backend.
type Preferences struct {
	Language      string               `json:"language,omitempty"`
	Theme         string               `json:"theme,omitempty"`
	Notifications NotificationSettings `json:"notifications"`
}

// User is the authenticated account profile.
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email,omitempty"`
	Name        string       `json:"name"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Provider    string       `json:"auth_provider"`
	IsGuest     bool         `json:"is_guest"`
	Preferences *Preferences `json:"preferences,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// # Wire DTOs

// AuthResponse is the backend payload for every credential-issuing endpoint
// (google login, guest login, refresh).
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         User   `json:"user"`
}

type googleLoginRequest struct {
	IDToken   string `json:"id_token"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type guestLoginRequest struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// # Session State

// State enumerates the session lifecycle phases.
type State string

const (
	// StateLoading marks an authentication operation in flight.
	StateLoading State = "loading"
	// StateAuthenticated marks an active session with valid credentials.
	StateAuthenticated State = "authenticated"
	// StateUnauthenticated marks the absence of a session.
	StateUnauthenticated State = "unauthenticated"
	// StateError marks a failed operation; Err on the snapshot says why.
	StateError State = "error"
)

// Snapshot is the manager's published view of the session. It is a value
// copy; readers can hold it without locking.
type Snapshot struct {
	// State is the current lifecycle phase.
	State State
	// User is the signed-in profile, nil unless State is Authenticated.
	User *User
	// Err is the failure behind StateError, nil otherwise.
	Err error
	// AccessTokenExpiresAt is the advisory expiry parsed from the access
	// token. Zero when unknown. Backend verification, not this timestamp,
	// decides whether the session is still valid.
	AccessTokenExpiresAt time.Time
}
