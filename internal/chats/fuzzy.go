// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chats

import (
	"regexp"
	"strings"

	"github.com/ponylabs/pony-tui/internal/model"
)

// =============================================================================
// FUZZY CHAT FILTER
// =============================================================================

// Filter narrows a chat list to entries whose display name matches the
// query as a subsequence: every query character must appear in the name
// in order, with arbitrary gaps. The result preserves the original
// relative order. An empty query matches everything.
//
// Each query character becomes a required literal separated by an
// unbounded gap, with regex metacharacters escaped so they match
// literally. Go's regexp is RE2, so adversarial queries cannot trigger
// catastrophic backtracking.
func Filter(chats []model.Chat, query string, caseSensitive bool) []model.Chat {
	if query == "" {
		return chats
	}

	re, err := compileQuery(query, caseSensitive)
	if err != nil {
		// Unreachable with quoted literals; fail closed just in case.
		return nil
	}

	filtered := make([]model.Chat, 0, len(chats))
	for _, chat := range chats {
		if re.MatchString(chat.Name) {
			filtered = append(filtered, chat)
		}
	}
	return filtered
}

// Matches reports whether a single name matches the query.
func Matches(name, query string, caseSensitive bool) bool {
	if query == "" {
		return true
	}
	re, err := compileQuery(query, caseSensitive)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

// compileQuery turns "pa" into the pattern `p.*a`, with each character
// quoted so the query cannot inject control syntax.
func compileQuery(query string, caseSensitive bool) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(query))
	for _, r := range query {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	pattern := strings.Join(parts, ".*")
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}
