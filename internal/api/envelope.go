// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import "github.com/taibuivan/joury-go/internal/platform/jsonval"

// envelope is the uniform wrapper every backend response uses:
//
//	{ "success": bool, "data": T|null, "message": string|null,
//	  "timestamp": string|null, "error": {code, message, details}|null }
//
// Payloads are unwrapped before they reach callers; nobody outside this
// package sees the envelope.
type envelope[T any] struct {
	Success   bool      `json:"success"`
	Data      *T        `json:"data"`
	Message   *string   `json:"message"`
	Timestamp *string   `json:"timestamp"`
	Error     *APIError `json:"error"`
}

// APIError is the backend's structured error payload.
type APIError struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Details map[string]jsonval.Value `json:"details,omitempty"`
}

// failureMessage resolves the user-facing message for an unsuccessful
// envelope: error.message, then the top-level message, then a fallback.
func (e *envelope[T]) failureMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if e.Message != nil && *e.Message != "" {
		return *e.Message
	}
	return "Unknown error"
}

// Empty is the decode target for endpoints whose data payload carries no
// information (logout, verification pings).
type Empty struct{}
