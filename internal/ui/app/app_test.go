// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/cache"
	"github.com/ponylabs/pony-tui/internal/config"
	"github.com/ponylabs/pony-tui/internal/session"
	"github.com/ponylabs/pony-tui/internal/ui/components"
)

// testBackend serves the handful of routes the flows below touch.
func testBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/token":
			r.ParseForm()
			if r.PostFormValue("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Invalid credentials"}`))
				return
			}
			w.Write([]byte(`{"access_token":"T","token_type":"bearer"}`))

		case r.Method == http.MethodGet && r.URL.Path == "/users/me":
			w.Write([]byte(`{"user":{"id":1,"username":"ripley","email":"r@wy.corp","created_at":"2023-11-01T00:00:00"}}`))

		case r.Method == http.MethodGet && r.URL.Path == "/chats":
			w.Write([]byte(`{"meta":{"count":1},"chats":[{"id":42,"name":"newt gang"}]}`))

		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":{"type":"entity_not_found","entity_name":"Chat","entity_id":0}}`))
		}
	})
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	srv := httptest.NewServer(testBackend())
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.BaseURL = srv.URL
	cfg.UI.PlaceholderChats = 3

	sess := session.NewStore(filepath.Join(t.TempDir(), "token"))
	client := api.NewClient(srv.URL, sess)
	m := New(cfg, sess, client, cache.New(), nil)
	m.width, m.height = 100, 30
	m.layout()
	return m
}

// runCmd executes a non-batch command synchronously.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func typeKeys(t *testing.T, m *Model, s string) {
	t.Helper()
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// =============================================================================
// LOGIN FLOW
// =============================================================================

func TestLogin_SuccessSwitchesToChats(t *testing.T) {
	m := newTestModel(t)
	if m.view != ViewLogin {
		t.Fatal("expected the login view while unauthenticated")
	}

	typeKeys(t, m, "ripley")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeKeys(t, m, "secret")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg := runCmd(t, cmd)
	result, ok := msg.(LoginResultMsg)
	if !ok {
		t.Fatalf("got %T, want LoginResultMsg", msg)
	}
	if result.Err != nil {
		t.Fatalf("login failed: %v", result.Err)
	}

	m.Update(result)
	if m.view != ViewChats {
		t.Error("expected the chats view after login")
	}
	if !m.sess.IsAuthenticated() {
		t.Error("session should hold the token")
	}
}

func TestLogin_RejectionStaysOnForm(t *testing.T) {
	m := newTestModel(t)

	typeKeys(t, m, "ripley")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeKeys(t, m, "wrong")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	result := runCmd(t, cmd).(LoginResultMsg)
	if !api.IsUnauthorized(result.Err) {
		t.Fatalf("want 401, got %v", result.Err)
	}

	m.Update(result)
	if m.view != ViewLogin {
		t.Error("a rejected login must stay on the form")
	}
	if m.sess.IsAuthenticated() {
		t.Error("no token must be stored on rejection")
	}
}

// =============================================================================
// POSTING FLOW
// =============================================================================

func TestPost_FailureKeepsDraft(t *testing.T) {
	m := newTestModel(t)
	m.view = ViewChats
	m.activeChat = 99 // Backend 404s this chat

	runCmd(t, m.msgInput.Focus())
	m.chatList.Blur()
	typeKeys(t, m, "hello there")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := runCmd(t, cmd)
	result, ok := msg.(PostResultMsg)
	if !ok {
		t.Fatalf("got %T, want PostResultMsg", msg)
	}
	if !api.IsNotFound(result.Err) {
		t.Fatalf("want 404, got %v", result.Err)
	}

	m.Update(result)
	if m.msgInput.Value() != "hello there" {
		t.Errorf("draft = %q, must survive a failed post", m.msgInput.Value())
	}
	if m.statusBar.Status != components.StatusError {
		t.Error("status bar should show the failure")
	}
}

func TestChatsLoaded_ReplacesPlaceholders(t *testing.T) {
	m := newTestModel(t)
	m.view = ViewChats

	cmd := LoadChatsCmd(m.chatSvc)
	msg := runCmd(t, cmd).(ChatsLoadedMsg)
	if msg.Err != nil {
		t.Fatalf("load failed: %v", msg.Err)
	}

	m.Update(msg)
	m.chatList.Focus()
	chat, ok := m.chatList.Selected()
	if !ok || chat.Name != "newt gang" {
		t.Errorf("Selected = %+v, want the loaded chat", chat)
	}
}
