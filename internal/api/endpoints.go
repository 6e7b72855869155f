// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Pony Express chat API.
package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ponylabs/pony-tui/internal/model"
)

// =============================================================================
// CHATS
// =============================================================================

// ListChats fetches the chat summaries, sorted by name by the server.
func (c *Client) ListChats(ctx context.Context) ([]model.Chat, error) {
	data, err := c.Request(ctx, http.MethodGet, "/chats", nil)
	if err != nil {
		return nil, err
	}
	var coll model.ChatCollection
	if err := decode(data, &coll); err != nil {
		return nil, err
	}
	return coll.Chats, nil
}

// ListMessages fetches a chat's messages, ordered by creation time
// ascending by the server.
func (c *Client) ListMessages(ctx context.Context, chatID int) ([]model.Message, error) {
	data, err := c.Request(ctx, http.MethodGet, "/chats/"+strconv.Itoa(chatID)+"/messages", nil)
	if err != nil {
		return nil, err
	}
	var coll model.MessageCollection
	if err := decode(data, &coll); err != nil {
		return nil, err
	}
	return coll.Messages, nil
}

// CreateMessage posts a new message to a chat. Requires authentication.
func (c *Client) CreateMessage(ctx context.Context, chatID int, text string) (*model.Message, error) {
	body := struct {
		Text string `json:"text"`
	}{Text: text}

	data, err := c.Request(ctx, http.MethodPost, "/chats/"+strconv.Itoa(chatID)+"/messages", body)
	if err != nil {
		return nil, err
	}
	var resp model.MessageResponse
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

// =============================================================================
// USERS
// =============================================================================

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	data, err := c.Request(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	var resp model.UserResponse
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateProfile updates the authenticated user's username and/or email.
// Empty fields are left unchanged.
func (c *Client) UpdateProfile(ctx context.Context, username, email string) (*model.User, error) {
	body := struct {
		Username string `json:"username,omitempty"`
		Email    string `json:"email,omitempty"`
	}{Username: username, Email: email}

	data, err := c.Request(ctx, http.MethodPut, "/users/me", body)
	if err != nil {
		return nil, err
	}
	var resp model.UserResponse
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a token payload via the OAuth2
// password form. The client does not store the token; that is the
// session store's job.
func (c *Client) Login(ctx context.Context, username, password string) (*model.TokenPayload, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	data, err := c.RequestForm(ctx, "/auth/token", form)
	if err != nil {
		return nil, err
	}
	var payload model.TokenPayload
	if err := decode(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Register creates a new account. Returns the created user.
func (c *Client) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	body := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Username: username, Email: email, Password: password}

	data, err := c.Request(ctx, http.MethodPost, "/auth/registration", body)
	if err != nil {
		return nil, err
	}
	var resp model.UserResponse
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
