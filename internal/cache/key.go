// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides a key-addressed cache of fetched resources with
// request de-duplication, prefix invalidation, and subscriptions.
package cache

import "strings"

// =============================================================================
// CACHE KEYS
// =============================================================================

// keySep separates key parts in the flattened form. The unit separator
// cannot appear in chat IDs or resource names, so flattened keys are
// unambiguous.
const keySep = "\x1f"

// Key is a structured identifier for a cached resource. Keys are tuples
// so that invalidating a prefix invalidates every key sharing it:
// ["chats"] covers ["chats", "42", "messages"].
type Key []string

// NewKey builds a key from its parts.
func NewKey(parts ...string) Key {
	return Key(parts)
}

// String flattens the key for use as a map index.
func (k Key) String() string {
	return strings.Join(k, keySep)
}

// HasPrefix reports whether k starts with prefix, component-wise.
// Every key is a prefix of itself; the empty key is a prefix of all.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, part := range prefix {
		if k[i] != part {
			return false
		}
	}
	return true
}

// Equal reports whether two keys are identical.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}
