// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Pony Express chat API.
//
// The client builds requests against a configured base endpoint,
// attaches the bearer token when one is available, and normalizes
// responses to parsed JSON. It performs no retries: a single network or
// server failure propagates to the caller unchanged.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// MaxResponseSize caps response bodies read into memory.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// DefaultTimeout is the default timeout for API requests.
const DefaultTimeout = 30 * time.Second

// TokenSource yields the current bearer token, or "" when the session
// is unauthenticated. The session store is the only implementation; the
// client only ever reads the token.
type TokenSource interface {
	Token() string
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Pony Express API.
//
// The Client is safe for concurrent use.
type Client struct {
	mu      sync.RWMutex
	baseURL string

	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a client against the given base endpoint. tokens
// may be nil for a client that only makes unauthenticated calls.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// SetBaseURL swaps the base endpoint. Used when the config file changes
// while the client is running.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// BaseURL returns the current base endpoint.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// =============================================================================
// REQUEST
// =============================================================================

// Request performs an HTTP request against the API and returns the raw
// JSON response body. body, when non-nil, is JSON-encoded. A non-2xx
// response is returned as *APIError; transport failures wrap ErrNetwork.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	return c.do(req)
}

// RequestForm performs a form-encoded POST. The token endpoint is the
// only caller; everything else speaks JSON.
func (c *Client) RequestForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	return c.do(req)
}

// authorize attaches the bearer credential when a token is available.
// Without a token the request goes out unauthenticated.
func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do executes the request and normalizes the outcome.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: data}
	}

	return json.RawMessage(data), nil
}

// decode unmarshals a response body into out with a uniform error.
func decode(data json.RawMessage, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}
