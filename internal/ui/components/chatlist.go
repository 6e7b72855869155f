// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the pony TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/ponylabs/pony-tui/internal/chats"
	"github.com/ponylabs/pony-tui/internal/model"
	"github.com/ponylabs/pony-tui/internal/ui/styles"
)

// =============================================================================
// CHAT LIST COMPONENT
// =============================================================================

// ChatList is the left-hand pane listing all chats with a fuzzy filter
// input on top. Filtering narrows the visible entries without mutating
// the full list, so clearing the query restores everything.
type ChatList struct {
	all      []model.Chat // Full list from the cache
	visible  []model.Chat // Entries matching the current filter
	selected int          // Index into visible
	focused  bool

	filter        textinput.Model
	caseSensitive bool

	width  int
	height int
	theme  *styles.Theme
}

// NewChatList creates the chat list pane. Until the first load resolves
// it shows placeholder entries.
func NewChatList(theme *styles.Theme, placeholders int, caseSensitive bool) *ChatList {
	filter := textinput.New()
	filter.Placeholder = "filter chats"
	filter.Prompt = "/ "
	filter.CharLimit = 64

	l := &ChatList{
		filter:        filter,
		caseSensitive: caseSensitive,
		theme:         theme,
		width:         30,
		height:        20,
	}
	l.SetChats(model.PlaceholderChats(placeholders))
	return l
}

// SetChats replaces the full list and re-applies the current filter.
// The selection is clamped rather than reset so a cache refresh does not
// yank the cursor back to the top.
func (l *ChatList) SetChats(chats []model.Chat) {
	l.all = chats
	l.applyFilter()
}

// SetSize updates the pane dimensions.
func (l *ChatList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.filter.Width = width - 4
}

// Focus gives the pane keyboard focus.
func (l *ChatList) Focus() {
	l.focused = true
	l.filter.Focus()
}

// Blur removes keyboard focus.
func (l *ChatList) Blur() {
	l.focused = false
	l.filter.Blur()
}

// Focused reports whether the pane has keyboard focus.
func (l *ChatList) Focused() bool {
	return l.focused
}

// Selected returns the chat under the cursor, or false when the filter
// matched nothing or only placeholders are shown.
func (l *ChatList) Selected() (model.Chat, bool) {
	if l.selected < 0 || l.selected >= len(l.visible) {
		return model.Chat{}, false
	}
	chat := l.visible[l.selected]
	if chat.Placeholder {
		return model.Chat{}, false
	}
	return chat, true
}

// Query returns the current filter text.
func (l *ChatList) Query() string {
	return l.filter.Value()
}

// ClearFilter resets the filter, restoring the full list.
func (l *ChatList) ClearFilter() {
	l.filter.SetValue("")
	l.applyFilter()
}

// Update handles key events while the pane is focused.
func (l *ChatList) Update(msg tea.Msg) (*ChatList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	switch keyMsg.String() {
	case "up", "ctrl+p":
		if l.selected > 0 {
			l.selected--
		}
		return l, nil
	case "down", "ctrl+n":
		if l.selected < len(l.visible)-1 {
			l.selected++
		}
		return l, nil
	case "esc":
		l.ClearFilter()
		return l, nil
	}

	var cmd tea.Cmd
	l.filter, cmd = l.filter.Update(msg)
	l.applyFilter()
	return l, cmd
}

// applyFilter recomputes the visible entries from the full list.
func (l *ChatList) applyFilter() {
	l.visible = chats.Filter(l.all, l.filter.Value(), l.caseSensitive)
	if l.selected >= len(l.visible) {
		l.selected = len(l.visible) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// View renders the pane.
func (l *ChatList) View() string {
	var b strings.Builder

	b.WriteString(l.theme.FilterPrompt.Render(l.filter.View()))
	b.WriteString("\n")

	if len(l.visible) == 0 {
		b.WriteString(l.theme.FilterNoMatch.Render("no matching chats"))
	}

	maxName := l.width - 6
	if maxName < 8 {
		maxName = 8
	}
	for i, chat := range l.visible {
		name := runewidth.Truncate(chat.Name, maxName, "...")

		var line string
		switch {
		case chat.Placeholder:
			line = l.theme.ChatPlaceholder.Render(name)
		case i == l.selected && l.focused:
			line = l.theme.ChatItemSelected.Render(name)
		default:
			line = l.theme.ChatItem.Render(name)
		}
		b.WriteString(line)
		if i < len(l.visible)-1 {
			b.WriteString("\n")
		}
	}

	border := l.theme.ChatList
	if l.focused {
		border = l.theme.ChatListFocused
	}
	return border.Width(l.width).Height(l.height).Render(b.String())
}
