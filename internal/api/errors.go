// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Pony Express chat API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ponylabs/pony-tui/internal/util"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrNetwork marks transport failures where no response was received.
// Callers can match it with errors.Is.
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the server. It carries the status
// and raw body so the caller can decide what to show; the client never
// retries and never reacts to the status itself (a 401 does not clear
// the session).
type APIError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	detail := e.Detail()
	if detail == "" {
		detail = util.TruncateRunes(string(e.Body), 120)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, detail)
}

// Detail extracts the server's error detail, if the body carries one.
// The backend wraps errors as {"detail": ...} where detail is either a
// plain string or a structured entity-not-found object.
func (e *APIError) Detail() string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var structured struct {
		Type       string `json:"type"`
		EntityName string `json:"entity_name"`
		EntityID   any    `json:"entity_id"`
	}
	if err := json.Unmarshal(envelope.Detail, &structured); err == nil && structured.Type != "" {
		switch {
		case structured.EntityName != "" && structured.EntityID != nil:
			return fmt.Sprintf("%s: %s %v", structured.Type, structured.EntityName, structured.EntityID)
		case structured.EntityName != "":
			return fmt.Sprintf("%s: %s", structured.Type, structured.EntityName)
		default:
			return structured.Type
		}
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsUnauthorized reports whether err is a 401 from the API. The session
// is never cleared automatically on a 401; logout stays a user action.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
