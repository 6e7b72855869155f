// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package users resolves the current authenticated user's profile
// through the resource cache.
package users

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/cache"
	"github.com/ponylabs/pony-tui/internal/model"
	"github.com/ponylabs/pony-tui/internal/session"
)

// =============================================================================
// USER RESOLVER
// =============================================================================

// Resolver is a thin cache entry over the API gateway for the current
// user's profile. While the session is unauthenticated it answers
// "absent" without touching the network; once authenticated it fetches
// the profile once and serves the cached copy to every view.
type Resolver struct {
	session *session.Store
	client  *api.Client
	cache   *cache.Store
}

// NewResolver wires the resolver to its collaborators.
func NewResolver(s *session.Store, c *api.Client, store *cache.Store) *Resolver {
	return &Resolver{session: s, client: c, cache: store}
}

// Key returns the cache key for the current session's profile. The key
// embeds a fingerprint of the token, so a new token never reuses a
// previous token's entry. Clearing the session makes the old entry
// unreachable rather than requiring explicit invalidation.
func (r *Resolver) Key() cache.Key {
	return cache.NewKey("users", "me", fingerprint(r.session.Token()))
}

// Current resolves the authenticated user's profile. Returns
// (nil, false, nil) with no network call while logged out.
func (r *Resolver) Current(ctx context.Context) (*model.User, bool, error) {
	if !r.session.IsAuthenticated() {
		return nil, false, nil
	}

	data, err := r.cache.Get(ctx, r.Key(), func(ctx context.Context) (any, error) {
		return r.client.CurrentUser(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	user, ok := data.(*model.User)
	if !ok {
		return nil, false, nil
	}
	return user, true, nil
}

// fingerprint derives a short stable identifier from a token without
// embedding the token itself in cache keys.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
