// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Detail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "string detail",
			body: `{"detail":"Invalid credentials"}`,
			want: "Invalid credentials",
		},
		{
			name: "structured entity detail",
			body: `{"detail":{"type":"entity_not_found","entity_name":"Chat","entity_id":99}}`,
			want: "entity_not_found: Chat 99",
		},
		{
			name: "duplicate entity detail",
			body: `{"detail":{"type":"duplicate_entity","entity_name":"User","entity_field":"username"}}`,
			want: "duplicate_entity: User",
		},
		{
			name: "unparseable body yields no detail",
			body: `<html>bad gateway</html>`,
			want: "",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := &APIError{StatusCode: http.StatusNotFound, Body: []byte(tt.body)}
			assert.Equal(t, tt.want, apiErr.Detail())
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	notFound := &APIError{StatusCode: http.StatusNotFound}
	unauthorized := &APIError{StatusCode: http.StatusUnauthorized}

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(unauthorized))
	assert.True(t, IsUnauthorized(unauthorized))
	assert.False(t, IsUnauthorized(notFound))

	// Predicates see through wrapping.
	wrapped := fmt.Errorf("fetching chats: %w", notFound)
	assert.True(t, IsNotFound(wrapped))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestErrNetwork_Wrapping(t *testing.T) {
	err := fmt.Errorf("%w: connection refused", ErrNetwork)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures carry no status code")
}
