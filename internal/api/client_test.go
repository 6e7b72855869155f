// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticToken is a TokenSource with a fixed value.
type staticToken string

func (s staticToken) Token() string { return string(s) }

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestRequest_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-123"))
	if _, err := c.Request(context.Background(), http.MethodGet, "/chats", nil); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestRequest_UnauthenticatedWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken(""))
	if _, err := c.Request(context.Background(), http.MethodGet, "/chats", nil); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestRequest_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":{"type":"entity_not_found","entity_name":"Chat","entity_id":99}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Request(context.Background(), http.MethodGet, "/chats/99", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should be true")
	}
	if apiErr.Detail() != "entity_not_found: Chat 99" {
		t.Errorf("Detail = %q", apiErr.Detail())
	}
}

func TestRequest_UnauthorizedIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid access token"}`))
	}))
	defer srv.Close()

	tokens := staticToken("expired")
	c := NewClient(srv.URL, tokens)
	_, err := c.Request(context.Background(), http.MethodGet, "/users/me", nil)

	if !IsUnauthorized(err) {
		t.Fatalf("want unauthorized error, got %v", err)
	}
	// The token source is untouched: no auto-logout on 401.
	if tokens.Token() != "expired" {
		t.Error("token should be untouched after a 401")
	}
}

func TestRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Closed before use: every request fails at transport level.

	c := NewClient(srv.URL, nil)
	_, err := c.Request(context.Background(), http.MethodGet, "/chats", nil)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("want ErrNetwork, got %v", err)
	}
}

func TestRequest_NoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"boom"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.Request(context.Background(), http.MethodGet, "/chats", nil); err == nil {
		t.Fatal("want error")
	}
	if calls != 1 {
		t.Errorf("server called %d times, want exactly 1 (no retry)", calls)
	}
}

// =============================================================================
// ENDPOINT TESTS
// =============================================================================

func TestCreateMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":{"id":7,"chat_id":42,"text":"hi",
			"user":{"id":1,"username":"ripley","email":"r@wy.corp","created_at":"2023-11-01T00:00:00"},
			"created_at":"2023-11-08T18:46:55"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("T"))
	msg, err := c.CreateMessage(context.Background(), 42, "hi")
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	if gotPath != "POST /chats/42/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer T" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["text"] != "hi" {
		t.Errorf("body text = %q", gotBody["text"])
	}
	if msg.ID != 7 || msg.User.Username != "ripley" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestListChats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chats" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"meta":{"count":1},"chats":[{"id":1,"name":"newt gang"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	chats, err := c.ListChats(context.Background())
	if err != nil {
		t.Fatalf("ListChats failed: %v", err)
	}
	if len(chats) != 1 || chats[0].Name != "newt gang" {
		t.Errorf("unexpected chats: %+v", chats)
	}
}

func TestLogin_SendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		r.ParseForm()
		if r.PostForm.Get("username") != "ripley" || r.PostForm.Get("password") != "s3cret" {
			t.Errorf("form = %v", r.PostForm)
		}
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	payload, err := c.Login(context.Background(), "ripley", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if payload.AccessToken != "tok" {
		t.Errorf("AccessToken = %q", payload.AccessToken)
	}
}

func TestSetBaseURL(t *testing.T) {
	c := NewClient("http://old.example.com/", nil)
	if c.BaseURL() != "http://old.example.com" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", c.BaseURL())
	}
	c.SetBaseURL("http://new.example.com")
	if c.BaseURL() != "http://new.example.com" {
		t.Errorf("BaseURL = %q after SetBaseURL", c.BaseURL())
	}
}
