// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/cache"
	"github.com/ponylabs/pony-tui/internal/model"
	"github.com/ponylabs/pony-tui/internal/session"
)

// fakeBackend is a minimal in-memory Pony Express API.
type fakeBackend struct {
	mu             sync.Mutex
	chatsServed    int
	messagesServed int
	lastAuth       string
	lastPostBody   string
	messages       []string
}

func (f *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastAuth = r.Header.Get("Authorization")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/chats":
			f.chatsServed++
			w.Write([]byte(`{"meta":{"count":1},"chats":[{"id":42,"name":"newt gang"}]}`))

		case r.Method == http.MethodGet && r.URL.Path == "/chats/42/messages":
			f.messagesServed++
			items := ""
			for i, text := range f.messages {
				if i > 0 {
					items += ","
				}
				items += fmt.Sprintf(`{"id":%d,"chat_id":42,"text":%q,
					"user":{"id":1,"username":"ripley","email":"r@wy.corp","created_at":"2023-11-01T00:00:00"},
					"created_at":"2023-11-08T18:46:55"}`, i+1, text)
			}
			fmt.Fprintf(w, `{"meta":{"count":%d},"messages":[%s]}`, len(f.messages), items)

		case r.Method == http.MethodPost && r.URL.Path == "/chats/42/messages":
			raw, _ := io.ReadAll(r.Body)
			f.lastPostBody = string(raw)
			var body struct {
				Text string `json:"text"`
			}
			json.Unmarshal(raw, &body)
			f.messages = append(f.messages, body.Text)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"message":{"id":%d,"chat_id":42,"text":%q,
				"user":{"id":1,"username":"ripley","email":"r@wy.corp","created_at":"2023-11-01T00:00:00"},
				"created_at":"2023-11-08T18:46:55"}}`, len(f.messages), body.Text)

		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":{"type":"entity_not_found","entity_name":"Chat","entity_id":0}}`))
		}
	})
}

func newFixture(t *testing.T) (*Service, *fakeBackend, *session.Store) {
	t.Helper()
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	sess := session.NewStore(filepath.Join(t.TempDir(), "token"))
	client := api.NewClient(srv.URL, sess)
	return NewService(client, cache.New(), nil), backend, sess
}

// =============================================================================
// KEY TESTS
// =============================================================================

func TestKeys(t *testing.T) {
	if !MessagesKey(42).HasPrefix(ChatsKey()) {
		t.Error("the chats key must prefix every message key")
	}
	if ChatRoute(42) != "/chats/42" {
		t.Errorf("ChatRoute = %q", ChatRoute(42))
	}
}

// =============================================================================
// READ PATH TESTS
// =============================================================================

func TestList_CachedAcrossCalls(t *testing.T) {
	svc, backend, _ := newFixture(t)

	for i := 0; i < 3; i++ {
		chats, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(chats) != 1 || chats[0].Name != "newt gang" {
			t.Errorf("List = %+v", chats)
		}
	}
	if backend.chatsServed != 1 {
		t.Errorf("GET /chats served %d times, want 1", backend.chatsServed)
	}
}

func TestMessages(t *testing.T) {
	svc, backend, _ := newFixture(t)
	backend.messages = []string{"hello", "there"}

	msgs, err := svc.Messages(context.Background(), 42)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "hello" || msgs[1].Text != "there" {
		t.Errorf("Messages = %+v", msgs)
	}
}

// =============================================================================
// MUTATION FLOW TESTS
// =============================================================================

func TestPost_FullScenario(t *testing.T) {
	svc, backend, sess := newFixture(t)
	if err := sess.Login(model.TokenPayload{AccessToken: "T"}); err != nil {
		t.Fatal(err)
	}

	// Prime both cache entries.
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Messages(context.Background(), 42); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Post(context.Background(), 42, "hi")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	// The gateway sent the right request with the bearer credential.
	if backend.lastAuth != "Bearer T" {
		t.Errorf("Authorization = %q, want Bearer T", backend.lastAuth)
	}
	var body struct {
		Text string `json:"text"`
	}
	json.Unmarshal([]byte(backend.lastPostBody), &body)
	if body.Text != "hi" {
		t.Errorf("POST body = %q", backend.lastPostBody)
	}

	// The caller is told to navigate to the chat detail view.
	if res.Route != "/chats/42" {
		t.Errorf("Route = %q, want /chats/42", res.Route)
	}
	if res.Message == nil || res.Message.Text != "hi" {
		t.Errorf("Message = %+v", res.Message)
	}

	// Both keys were invalidated: the next reads hit the server again
	// and observe the new message.
	chatsBefore, messagesBefore := backend.chatsServed, backend.messagesServed
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	msgs, err := svc.Messages(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if backend.chatsServed != chatsBefore+1 {
		t.Error("chat list should be refetched after a post")
	}
	if backend.messagesServed != messagesBefore+1 {
		t.Error("message list should be refetched after a post")
	}
	if len(msgs) != 1 || msgs[0].Text != "hi" {
		t.Errorf("post-invalidation messages = %+v, want the new entry", msgs)
	}
}

func TestPost_FailureDoesNotInvalidate(t *testing.T) {
	svc, backend, _ := newFixture(t)

	// Prime the cache.
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	served := backend.chatsServed

	// Post to a chat the backend rejects.
	_, err := svc.Post(context.Background(), 99, "hi")
	if !api.IsNotFound(err) {
		t.Fatalf("want 404, got %v", err)
	}

	// Cache untouched: the next List is still served from memory.
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if backend.chatsServed != served {
		t.Error("failed post must not invalidate the cache")
	}
}
