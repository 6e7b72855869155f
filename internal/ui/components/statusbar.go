// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ponylabs/pony-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusOffline
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading..."
	case StatusOffline:
		return "Offline"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status, shown alongside the
// color so the state reads without color vision.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusOffline:
		return styles.StatusIndicators.Warning
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar showing the signed-in user, the
// server, the current status, and keyboard shortcuts.
type StatusBar struct {
	Username      string
	ServerURL     string
	Status        Status
	Detail        string // Error text or transient notice
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status and detail text.
func (s *StatusBar) SetStatus(status Status, detail string) {
	s.Status = status
	s.Detail = detail
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders a compact bar: user, status icon, detail.
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	if s.Username != "" {
		parts = append(parts, s.theme.StatusOnline.Render(s.Username))
	}
	parts = append(parts, s.getStatusStyle().Render(s.Status.Icon()))
	if s.Detail != "" {
		parts = append(parts, runewidth.Truncate(s.Detail, s.Width-16, "..."))
	}

	result := strings.Join(parts, " ")
	return s.theme.StatusBar.Width(s.Width).Render(result)
}

// viewWide renders the full bar: user | server | status | shortcuts.
func (s *StatusBar) viewWide() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	if s.Username != "" {
		parts = append(parts, s.theme.StatusOnline.Render(s.Username))
	} else {
		parts = append(parts, s.theme.ShortcutDesc.Render("not signed in"))
	}

	parts = append(parts, s.theme.ShortcutDesc.Render(s.ServerURL))

	statusText := s.getStatusStyle().Render(s.Status.Icon() + " " + s.Status.String())
	parts = append(parts, statusText)

	if s.Detail != "" {
		parts = append(parts, s.getStatusStyle().Render(runewidth.Truncate(s.Detail, 48, "...")))
	}

	if s.ShowShortcuts {
		parts = append(parts, s.renderShortcuts())
	}

	result := strings.Join(parts, separator)
	return s.theme.StatusBar.Width(s.Width).Render(result)
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("^U") + s.theme.ShortcutDesc.Render("profile"),
		s.theme.ShortcutKey.Render("^C") + s.theme.ShortcutDesc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}

// getStatusStyle returns the style for the current status.
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return s.theme.StatusOnline
	case StatusLoading:
		return lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	case StatusOffline:
		return lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	case StatusError:
		return s.theme.StatusError
	default:
		return s.theme.ShortcutDesc
	}
}
