// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides a key-addressed cache of fetched resources with
// request de-duplication, prefix invalidation, and subscriptions.
//
// Each entry associates a fetcher with a stable key derived from the
// resource's logical identity. Concurrent readers of the same key share
// one in-flight fetch. A mutation invalidates a key prefix: entries with
// active subscribers are refetched in the background and their
// subscribers notified; entries nobody watches are dropped and fetched
// lazily on next access. Absent data is a pending state, not an error.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// =============================================================================
// ENTRY STATE
// =============================================================================

// Status describes an entry's lifecycle state.
type Status int

const (
	// StatusPending means no data has been fetched yet.
	StatusPending Status = iota
	// StatusReady means the entry holds fetched data.
	StatusReady
	// StatusError means the last fetch failed; the next access retries.
	StatusError
)

// Fetcher loads the resource for a key. Fetchers run outside the cache
// lock and may block on the network.
type Fetcher func(ctx context.Context) (any, error)

// entry is one cached resource.
type entry struct {
	key     Key
	fetcher Fetcher
	data    any
	err     error
	status  Status

	// stale marks data that must not be served again before a refetch.
	stale bool
}

// =============================================================================
// STORE
// =============================================================================

// Store is the resource cache. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	// Subscriber registry, keyed by flattened cache key.
	subs   map[string]map[int]func(Key)
	nextID int

	// DEDUP: concurrent Get calls for one key share a single fetch.
	group singleflight.Group
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		subs:    make(map[string]map[int]func(Key)),
	}
}

// =============================================================================
// GET
// =============================================================================

// Get returns the cached data for key if fresh. Otherwise it runs
// fetcher (at most once even under concurrent callers), stores the
// result, notifies subscribers, and returns it.
//
// A caller whose ctx is canceled while the shared fetch is in flight
// gets ctx.Err(), but the fetch itself continues and its result is
// cached for everyone else.
func (s *Store) Get(ctx context.Context, key Key, fetcher Fetcher) (any, error) {
	k := key.String()

	s.mu.Lock()
	e, ok := s.entries[k]
	if !ok {
		e = &entry{key: key, status: StatusPending}
		s.entries[k] = e
	}
	// The latest fetcher wins; invalidation refetches reuse it.
	e.fetcher = fetcher
	if e.status == StatusReady && !e.stale {
		data := e.data
		s.mu.Unlock()
		return data, nil
	}
	s.mu.Unlock()

	return s.fetch(ctx, key)
}

// Peek returns the entry's current data and status without fetching.
// Views use it to render a snapshot; ok is false when the key is absent.
func (s *Store) Peek(key Key) (data any, status Status, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return nil, StatusPending, false
	}
	return e.data, e.status, true
}

// fetch runs the entry's fetcher through the singleflight group and
// stores the outcome.
func (s *Store) fetch(ctx context.Context, key Key) (any, error) {
	k := key.String()

	ch := s.group.DoChan(k, func() (any, error) {
		s.mu.Lock()
		e, ok := s.entries[k]
		if !ok {
			// Dropped between scheduling and execution; nothing to do.
			s.mu.Unlock()
			return nil, nil
		}
		fetcher := e.fetcher
		s.mu.Unlock()

		// Detached from the first caller's ctx: late unsubscribers and
		// canceled callers must not abort the shared fetch.
		data, err := fetcher(context.WithoutCancel(ctx))
		s.complete(key, data, err)
		return data, err
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// complete records a fetch outcome and notifies subscribers.
func (s *Store) complete(key Key, data any, err error) {
	s.mu.Lock()
	e, ok := s.entries[key.String()]
	if !ok {
		s.mu.Unlock()
		return
	}
	if err != nil {
		// Errors are surfaced, never cached as fresh data.
		e.err = err
		e.status = StatusError
		e.stale = true
	} else {
		e.data = data
		e.err = nil
		e.status = StatusReady
		e.stale = false
	}
	s.mu.Unlock()

	s.notify(key)
}

// =============================================================================
// INVALIDATION
// =============================================================================

// Invalidate marks every entry whose key starts with prefix as stale.
// Entries with active subscribers are refetched in the background and
// their subscribers notified twice: once for the invalidation, once
// when fresh data lands. Entries without subscribers are dropped and
// refetched lazily on next access.
//
// Refetches are not guaranteed to complete before Invalidate returns;
// post-invalidation data is eventually consistent.
func (s *Store) Invalidate(prefix Key) {
	s.mu.Lock()
	var refetch []Key
	for k, e := range s.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		if len(s.subs[k]) > 0 {
			e.stale = true
			refetch = append(refetch, e.key)
		} else {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()

	for _, key := range refetch {
		s.notify(key)
		go s.fetch(context.Background(), key) //nolint:errcheck // surfaced via subscribers
	}
}

// Clear drops every entry and forgets nothing about subscribers.
// Used on logout so no stale server data survives into the next session.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers interest in a key. fn is called (on the fetching
// goroutine) whenever the key's data changes: fetched, refetched, or
// invalidated. The returned func unregisters; after it runs, fn is
// never called again, though an in-flight fetch still completes and
// caches for other subscribers.
func (s *Store) Subscribe(key Key, fn func(Key)) (unsubscribe func()) {
	k := key.String()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[k] == nil {
		s.subs[k] = make(map[int]func(Key))
	}
	s.subs[k][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[k], id)
		if len(s.subs[k]) == 0 {
			delete(s.subs, k)
		}
	}
}

// notify calls every subscriber of key outside the lock.
func (s *Store) notify(key Key) {
	k := key.String()

	s.mu.Lock()
	fns := make([]func(Key), 0, len(s.subs[k]))
	for _, fn := range s.subs[k] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
