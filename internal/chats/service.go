// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chats provides the chat list, message, and posting operations
// over the resource cache.
package chats

import (
	"context"
	"strconv"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/cache"
	"github.com/ponylabs/pony-tui/internal/model"
)

// =============================================================================
// CACHE KEYS
// =============================================================================

// ChatsKey is the cache key for the chat list. It is also the prefix of
// every per-chat key, so one invalidation covers the list and all
// message lists under it.
func ChatsKey() cache.Key {
	return cache.NewKey("chats")
}

// MessagesKey is the cache key for one chat's message list.
func MessagesKey(chatID int) cache.Key {
	return cache.NewKey("chats", strconv.Itoa(chatID), "messages")
}

// ChatRoute is the navigation target for a chat's detail view.
func ChatRoute(chatID int) string {
	return "/chats/" + strconv.Itoa(chatID)
}

// =============================================================================
// SNAPSHOT HOOK
// =============================================================================

// Snapshotter receives successful fetches for offline persistence.
// Snapshot failures never affect the fetch result.
type Snapshotter interface {
	SaveChats(chats []model.Chat) error
	SaveMessages(chatID int, messages []model.Message) error
}

// =============================================================================
// CHAT SERVICE
// =============================================================================

// Service exposes the chat operations the views call. All reads go
// through the resource cache; the write path invalidates it.
type Service struct {
	client *api.Client
	cache  *cache.Store
	snap   Snapshotter // optional
}

// NewService wires the service to the gateway and cache. snap may be
// nil to disable offline snapshots.
func NewService(client *api.Client, store *cache.Store, snap Snapshotter) *Service {
	return &Service{client: client, cache: store, snap: snap}
}

// List returns the chat summaries, fetching through the cache.
func (s *Service) List(ctx context.Context) ([]model.Chat, error) {
	data, err := s.cache.Get(ctx, ChatsKey(), func(ctx context.Context) (any, error) {
		chats, err := s.client.ListChats(ctx)
		if err != nil {
			return nil, err
		}
		if s.snap != nil {
			s.snap.SaveChats(chats) //nolint:errcheck // snapshot is best-effort
		}
		return chats, nil
	})
	if err != nil {
		return nil, err
	}
	chats, _ := data.([]model.Chat)
	return chats, nil
}

// Messages returns one chat's messages, ordered oldest first, fetching
// through the cache.
func (s *Service) Messages(ctx context.Context, chatID int) ([]model.Message, error) {
	data, err := s.cache.Get(ctx, MessagesKey(chatID), func(ctx context.Context) (any, error) {
		messages, err := s.client.ListMessages(ctx, chatID)
		if err != nil {
			return nil, err
		}
		if s.snap != nil {
			s.snap.SaveMessages(chatID, messages) //nolint:errcheck // snapshot is best-effort
		}
		return messages, nil
	})
	if err != nil {
		return nil, err
	}
	messages, _ := data.([]model.Message)
	return messages, nil
}

// =============================================================================
// MUTATION / INVALIDATION FLOW
// =============================================================================

// PostResult is the outcome of a successful message post.
type PostResult struct {
	// Message is the created message as confirmed by the server.
	Message *model.Message
	// Route is where the caller should navigate next.
	Route string
}

// Post creates a message under chatID. On success it invalidates the
// chat list (summaries may reorder) and the chat's message list, then
// tells the caller to navigate to the chat's detail view. On failure
// nothing is invalidated and the error propagates so the view can keep
// the input text for retry.
func (s *Service) Post(ctx context.Context, chatID int, text string) (*PostResult, error) {
	msg, err := s.client.CreateMessage(ctx, chatID, text)
	if err != nil {
		return nil, err
	}

	// ["chats"] is a prefix of ["chats", id, "messages"], so one
	// invalidation covers both the list summaries and this chat's
	// message list.
	s.cache.Invalidate(ChatsKey())

	return &PostResult{
		Message: msg,
		Route:   ChatRoute(chatID),
	}, nil
}
