// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable identifier for every failure class the client
// can produce. The set is closed: callers can switch exhaustively.
type Kind string

const (
	KindInvalidURL         Kind = "INVALID_URL"
	KindNoData             Kind = "NO_DATA"
	KindDecoding           Kind = "DECODING_ERROR"
	KindEncoding           Kind = "ENCODING_ERROR"
	KindHTTP               Kind = "HTTP_ERROR"
	KindNetworkUnavailable Kind = "NETWORK_UNAVAILABLE"
	KindTimeout            Kind = "TIMEOUT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindServer             Kind = "SERVER_ERROR"
	KindUnknown            Kind = "UNKNOWN"
)

// Error is the canonical error type of the API client.
//
// It carries the failure kind, the HTTP status code where one was observed,
// a human-readable message, and the wrapped underlying cause.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// StatusCode is the HTTP status that produced the error, 0 when the
	// failure happened before or after the HTTP exchange (including
	// envelope-level failures, which the backend reports inside a 200).
	StatusCode int
	// Message is a human-readable description.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *Error) Unwrap() error { return e.Cause }

// Transient reports whether the failure is worth retrying: connectivity
// loss, timeouts, and 5xx responses. Everything else is deterministic.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindNetworkUnavailable, KindTimeout, KindServer:
		return true
	default:
		return false
	}
}

// # Constructors

// InvalidURL reports a request whose URL could not be composed.
func InvalidURL(cause error) *Error {
	return &Error{Kind: KindInvalidURL, Message: "invalid request URL", Cause: cause}
}

// NoData reports a successful status with an empty body where one was required.
func NoData() *Error {
	return &Error{Kind: KindNoData, Message: "no data received"}
}

// Decoding wraps a response body decode failure.
func Decoding(cause error) *Error {
	return &Error{Kind: KindDecoding, Message: "failed to decode response", Cause: cause}
}

// Encoding wraps a request body encode failure.
func Encoding(cause error) *Error {
	return &Error{Kind: KindEncoding, Message: "failed to encode request body", Cause: cause}
}

// HTTPError reports a status outside the dedicated kinds, or — with code 0 —
// an envelope whose success flag was false.
func HTTPError(code int, message string) *Error {
	return &Error{Kind: KindHTTP, StatusCode: code, Message: message}
}

// NetworkUnavailable reports lost connectivity (DNS, dial, connection reset).
func NetworkUnavailable(cause error) *Error {
	return &Error{Kind: KindNetworkUnavailable, Message: "network unavailable", Cause: cause}
}

// Timeout reports an exceeded request or resource deadline.
func Timeout(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: "request timed out", Cause: cause}
}

// Unauthorized reports a 401. The auth-expiry port has already been notified
// by the time callers see this error.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, StatusCode: 401, Message: "authentication required"}
}

// Forbidden reports a 403.
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, StatusCode: 403, Message: "permission denied"}
}

// NotFound reports a 404.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, StatusCode: 404, Message: "resource not found"}
}

// ServerError reports any 5xx status.
func ServerError(code int) *Error {
	return &Error{Kind: KindServer, StatusCode: code, Message: "server error"}
}

// Unknown wraps a failure that matched no other classification.
func Unknown(cause error) *Error {
	return &Error{Kind: KindUnknown, Message: "unknown error", Cause: cause}
}

// # Helpers

// As extracts the [*Error] from err's chain. It returns nil if not found.
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsKind reports whether err (or any error in its chain) is an API error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr := As(err)
	return apiErr != nil && apiErr.Kind == kind
}
