// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/chats"
	"github.com/ponylabs/pony-tui/internal/session"
	"github.com/ponylabs/pony-tui/internal/users"
)

// requestTimeout bounds every command-driven API call so a dead server
// cannot wedge the event loop's in-flight state.
const requestTimeout = 15 * time.Second

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// LoadChatsCmd creates a command that fetches the chat list through the
// cache.
func LoadChatsCmd(svc *chats.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		list, err := svc.List(ctx)
		return ChatsLoadedMsg{Chats: list, Err: err}
	}
}

// LoadMessagesCmd creates a command that fetches one chat's messages
// through the cache.
func LoadMessagesCmd(svc *chats.Service, chatID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		messages, err := svc.Messages(ctx, chatID)
		return MessagesLoadedMsg{ChatID: chatID, Messages: messages, Err: err}
	}
}

// LoadUserCmd creates a command that resolves the current user.
func LoadUserCmd(resolver *users.Resolver) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, _, err := resolver.Current(ctx)
		return UserLoadedMsg{User: user, Err: err}
	}
}

// LoginCmd creates a command that exchanges credentials for a token and
// stores it in the session.
func LoginCmd(client *api.Client, sess *session.Store, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		payload, err := client.Login(ctx, username, password)
		if err != nil {
			return LoginResultMsg{Err: err}
		}
		return LoginResultMsg{Err: sess.Login(*payload)}
	}
}

// PostCmd creates a command that posts a message. localID ties the
// result back to the optimistic entry in the message pane.
func PostCmd(svc *chats.Service, chatID int, text, localID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := svc.Post(ctx, chatID, text)
		return PostResultMsg{ChatID: chatID, LocalID: localID, Result: result, Err: err}
	}
}

// SaveProfileCmd creates a command that updates the account profile.
func SaveProfileCmd(client *api.Client, username, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, err := client.UpdateProfile(ctx, username, email)
		return ProfileSavedMsg{User: user, Err: err}
	}
}
