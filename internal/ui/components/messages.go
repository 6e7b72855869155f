// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/ponylabs/pony-tui/internal/model"
	"github.com/ponylabs/pony-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE PANE COMPONENT
// =============================================================================

// MessagePane renders one chat's messages oldest-first inside a
// scrollable viewport. Markdown rendering through glamour is optional
// and falls back to plain text when the renderer cannot be built.
type MessagePane struct {
	viewport viewport.Model
	messages []model.Message
	username string // Current user, highlighted differently

	renderMarkdown bool
	renderer       *glamour.TermRenderer

	stale bool // True while a refetch is in flight

	width  int
	height int
	theme  *styles.Theme
}

// NewMessagePane creates the message pane.
func NewMessagePane(theme *styles.Theme, renderMarkdown bool) *MessagePane {
	vp := viewport.New(60, 20)

	p := &MessagePane{
		viewport:       vp,
		renderMarkdown: renderMarkdown,
		theme:          theme,
		width:          60,
		height:         20,
	}

	if renderMarkdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(56),
		)
		if err == nil {
			p.renderer = renderer
		}
	}
	return p
}

// SetUsername marks which author is the current user.
func (p *MessagePane) SetUsername(username string) {
	p.username = username
	p.refresh()
}

// SetMessages replaces the pane content and scrolls to the newest
// message.
func (p *MessagePane) SetMessages(messages []model.Message) {
	p.messages = messages
	p.refresh()
	p.viewport.GotoBottom()
}

// AppendPending adds an optimistic message to the bottom of the pane.
func (p *MessagePane) AppendPending(msg model.Message) {
	p.messages = append(p.messages, msg)
	p.refresh()
	p.viewport.GotoBottom()
}

// SetStale marks the pane content as awaiting a refetch.
func (p *MessagePane) SetStale(stale bool) {
	p.stale = stale
}

// SetSize updates the pane dimensions.
func (p *MessagePane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = width - 2
	p.viewport.Height = height - 2
	p.refresh()
}

// Update forwards scroll keys to the viewport.
func (p *MessagePane) Update(msg tea.Msg) (*MessagePane, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// refresh re-renders the viewport content from the message list.
func (p *MessagePane) refresh() {
	var b strings.Builder
	for i, msg := range p.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.renderMessage(msg))
	}
	p.viewport.SetContent(b.String())
}

// renderMessage renders a single message as author, timestamp, body.
func (p *MessagePane) renderMessage(msg model.Message) string {
	author := p.theme.MessageAuthor.Render(msg.User.Username)
	if msg.User.Username == p.username && p.username != "" {
		author = p.theme.MessageOwn.Render(msg.User.Username)
	}

	var header string
	if msg.Pending {
		header = author + " " + p.theme.MessagePending.Render("sending...")
	} else {
		header = author + " " + p.theme.MessageTime.Render(msg.FormatTimestamp())
	}

	body := msg.Text
	if p.renderer != nil {
		if rendered, err := p.renderer.Render(msg.Text); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	return header + "\n" + p.theme.MessageText.Render(body)
}

// View renders the pane.
func (p *MessagePane) View() string {
	content := p.viewport.View()
	if p.stale {
		content = p.theme.MessageTime.Render("refreshing...") + "\n" + content
	}
	return p.theme.MessagePane.Width(p.width).Height(p.height).Render(content)
}
