// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the authentication token and its derived
// logged-in state.
//
// The store is the sole writer of the token; every other component
// reads it through the api.TokenSource interface. The token is
// persisted to a file so a restart does not force re-login, and the
// persisted copy survives until an explicit logout. No validation is
// performed client-side: an expired token is only discovered when the
// API rejects it, and even then the session is not cleared. Logout
// stays a user action.
package session

import (
	"os"
	"strings"
	"sync"

	"github.com/ponylabs/pony-tui/internal/model"
	"github.com/ponylabs/pony-tui/internal/util"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// Store holds the current session token.
type Store struct {
	mu    sync.RWMutex
	token string
	path  string
}

// NewStore creates a store persisting to path and restores a previously
// saved token before first use. A missing or unreadable token file
// simply yields a logged-out session.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.restore()
	return s
}

// restore hydrates the in-memory token from the persisted copy.
func (s *Store) restore() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	s.token = strings.TrimSpace(string(data))
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Login stores the access token in memory and on disk. IsAuthenticated
// becomes true immediately; the disk write failing does not undo the
// in-memory login, it only costs persistence across restarts.
func (s *Store) Login(payload model.TokenPayload) error {
	s.mu.Lock()
	s.token = payload.AccessToken
	s.mu.Unlock()

	return util.AtomicWriteFile(s.path, []byte(payload.AccessToken), 0600)
}

// Logout clears the in-memory token and erases the persisted copy.
// IsAuthenticated becomes false immediately.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Token returns the current token, or "" when logged out. Implements
// api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}
