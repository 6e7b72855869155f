// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats, messages, and users.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ponylabs/pony-tui/internal/util"
)

// =============================================================================
// TIMESTAMP
// =============================================================================

// Timestamp decodes the server's creation times. The backend emits naive
// ISO 8601 timestamps (no zone suffix), which the stock time.Time decoder
// rejects, so both zoned and naive forms are accepted.
type Timestamp struct {
	time.Time
}

// timeLayouts are tried in order when decoding a timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.Format(time.RFC3339Nano) + `"`), nil
}

// =============================================================================
// CORE TYPES
// =============================================================================

// User is a Pony Express account as returned by the API.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

// Chat is the summary form of a chat used in listings. It carries no
// message payload.
type Chat struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	// Placeholder marks a synthetic entry shown while the real chat
	// list has not yet resolved. Placeholder chats are not navigable.
	Placeholder bool `json:"-"`
}

// Message is a single chat message, always scoped to exactly one chat.
type Message struct {
	ID        int       `json:"id"`
	ChatID    int       `json:"chat_id"`
	Text      string    `json:"text"`
	User      User      `json:"user"`
	CreatedAt Timestamp `json:"created_at"`

	// Pending marks an optimistic local message that has not been
	// confirmed by the server yet. LocalID correlates the optimistic
	// entry with the confirmed one once the server responds.
	Pending bool   `json:"-"`
	LocalID string `json:"-"`
}

// TokenPayload is the body returned by the token endpoint. Only the
// access token is used client-side; the token is never inspected.
type TokenPayload struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// =============================================================================
// COLLECTION ENVELOPES
// =============================================================================

// Meta is the collection metadata envelope the API wraps lists in.
type Meta struct {
	Count int `json:"count"`
}

// ChatCollection is the response envelope for GET /chats.
type ChatCollection struct {
	Meta  Meta   `json:"meta"`
	Chats []Chat `json:"chats"`
}

// MessageCollection is the response envelope for GET /chats/{id}/messages.
// Messages are ordered by creation time ascending.
type MessageCollection struct {
	Meta     Meta      `json:"meta"`
	Messages []Message `json:"messages"`
}

// UserResponse is the response envelope for GET /users/me.
type UserResponse struct {
	User User `json:"user"`
}

// MessageResponse is the response envelope for POST /chats/{id}/messages.
type MessageResponse struct {
	Message Message `json:"message"`
}

// =============================================================================
// HELPERS
// =============================================================================

// PlaceholderChats returns synthetic "loading" entries shown before the
// chat list has resolved for the first time.
func PlaceholderChats(n int) []Chat {
	chats := make([]Chat, n)
	for i := range chats {
		chats[i] = Chat{ID: i + 1, Name: "loading...", Placeholder: true}
	}
	return chats
}

// Preview returns a single-line preview of the message text, truncated
// to maxRunes characters.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(m.Text), maxRunes)
}

// FormatTimestamp renders the message creation time for display.
func (m Message) FormatTimestamp() string {
	return m.CreatedAt.Local().Format("Mon Jan 2 2006 - 3:04:05 PM")
}

// JoinDate renders the account creation date for the profile view.
func (u User) JoinDate() string {
	return u.CreatedAt.Local().Format("Mon Jan 2 2006")
}
