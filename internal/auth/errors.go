// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"fmt"

	"github.com/taibuivan/joury-go/internal/api"
	"github.com/taibuivan/joury-go/internal/tokenstore"
)

// Kind classifies session-layer failures. The set is closed.
type Kind string

const (
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindNetworkError       Kind = "NETWORK_ERROR"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindProviderAuthFailed Kind = "PROVIDER_AUTH_FAILED"
	KindStoreError         Kind = "STORE_ERROR"
	KindUnknown            Kind = "UNKNOWN"
)

// Error is the canonical error type of the session layer. HTTP-taxonomy
// errors never escape this package; they are re-mapped here so callers deal
// with session semantics only.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Message is a human-readable description.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *Error) Unwrap() error { return e.Cause }

// # Constructors

// InvalidCredentials reports credentials the backend rejected.
func InvalidCredentials(cause error) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "credentials rejected", Cause: cause}
}

// NetworkError reports connectivity loss during an auth operation.
func NetworkError(cause error) *Error {
	return &Error{Kind: KindNetworkError, Message: "network unavailable", Cause: cause}
}

// TokenExpired reports an absent or no-longer-refreshable session.
func TokenExpired(cause error) *Error {
	return &Error{Kind: KindTokenExpired, Message: "session expired", Cause: cause}
}

// ProviderAuthFailed reports a failure inside the external identity flow.
func ProviderAuthFailed(cause error) *Error {
	return &Error{Kind: KindProviderAuthFailed, Message: "identity provider authentication failed", Cause: cause}
}

// NewStoreError reports a credential-storage failure. The sign-in or refresh
// that hit it is aborted: a session that cannot be persisted must not exist.
func NewStoreError(cause error) *Error {
	return &Error{Kind: KindStoreError, Message: "credential storage failed", Cause: cause}
}

// Unknown wraps a failure that matched no other classification.
func Unknown(cause error) *Error {
	return &Error{Kind: KindUnknown, Message: "unknown authentication failure", Cause: cause}
}

// # Helpers

// As extracts the [*Error] from err's chain. It returns nil if not found.
func As(err error) *Error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// IsKind reports whether err (or any error in its chain) is a session error
// of the given kind.
func IsKind(err error, kind Kind) bool {
	authErr := As(err)
	return authErr != nil && authErr.Kind == kind
}

// mapAPIError translates the HTTP client's taxonomy into the session one.
func mapAPIError(err error) *Error {

	var storeErr *tokenstore.StoreError
	if errors.As(err, &storeErr) {
		return NewStoreError(err)
	}

	apiErr := api.As(err)
	if apiErr == nil {
		return Unknown(err)
	}

	switch apiErr.Kind {
	case api.KindUnauthorized, api.KindForbidden:
		return InvalidCredentials(err)
	case api.KindNetworkUnavailable, api.KindTimeout:
		return NetworkError(err)
	default:
		return Unknown(err)
	}
}
