// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the top-level Bubble Tea model. It routes between the
// login, chat, and profile views and bridges cache notifications into
// the event loop.
package app

import (
	"github.com/ponylabs/pony-tui/internal/cache"
	"github.com/ponylabs/pony-tui/internal/chats"
	"github.com/ponylabs/pony-tui/internal/model"
)

// =============================================================================
// EVENT LOOP MESSAGES
// =============================================================================

// ChatsLoadedMsg carries the chat list fetched through the cache.
type ChatsLoadedMsg struct {
	Chats []model.Chat
	Err   error
}

// MessagesLoadedMsg carries one chat's messages fetched through the
// cache.
type MessagesLoadedMsg struct {
	ChatID   int
	Messages []model.Message
	Err      error
}

// UserLoadedMsg carries the resolved current user.
type UserLoadedMsg struct {
	User *model.User
	Err  error
}

// LoginResultMsg reports the outcome of a credential submit.
type LoginResultMsg struct {
	Err error
}

// PostResultMsg reports the outcome of a message post. LocalID matches
// the optimistic entry appended when the post started.
type PostResultMsg struct {
	ChatID  int
	LocalID string
	Result  *chats.PostResult
	Err     error
}

// ProfileSavedMsg reports the outcome of a profile update.
type ProfileSavedMsg struct {
	User *model.User
	Err  error
}

// CacheChangedMsg is delivered when a subscribed cache entry is
// invalidated or refreshed outside the current view's own fetches.
type CacheChangedMsg struct {
	Key cache.Key
}

// SnapshotLoadedMsg carries offline data read at startup, shown until
// the first live fetch resolves.
type SnapshotLoadedMsg struct {
	Chats []model.Chat
}

// SnapshotMessagesMsg carries offline messages for a chat whose live
// fetch failed.
type SnapshotMessagesMsg struct {
	ChatID   int
	Messages []model.Message
}
