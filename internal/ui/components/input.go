// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ponylabs/pony-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE INPUT COMPONENT
// =============================================================================

// MessageInput is the single-line composer at the bottom of the chat
// view. The text is only cleared by the owner after the server confirms
// the post, so a failed send keeps the draft for retry.
type MessageInput struct {
	input textinput.Model
	width int
	theme *styles.Theme
}

// NewMessageInput creates the composer.
func NewMessageInput(theme *styles.Theme) *MessageInput {
	input := textinput.New()
	input.Placeholder = "type a message"
	input.Prompt = "> "
	input.CharLimit = 2000

	return &MessageInput{
		input: input,
		theme: theme,
		width: 60,
	}
}

// Value returns the trimmed draft text.
func (m *MessageInput) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Clear empties the composer. Called only after a confirmed post.
func (m *MessageInput) Clear() {
	m.input.SetValue("")
}

// Focus gives the composer keyboard focus.
func (m *MessageInput) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes keyboard focus.
func (m *MessageInput) Blur() {
	m.input.Blur()
}

// Focused reports whether the composer has keyboard focus.
func (m *MessageInput) Focused() bool {
	return m.input.Focused()
}

// SetSize updates the composer width.
func (m *MessageInput) SetSize(width int) {
	m.width = width
	m.input.Width = width - 6
}

// Update forwards key events to the underlying text input.
func (m *MessageInput) Update(msg tea.Msg) (*MessageInput, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the composer.
func (m *MessageInput) View() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}
