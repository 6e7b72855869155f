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
// LOGIN FORM COMPONENT
// =============================================================================

// loginField identifies which input currently has focus.
type loginField int

const (
	fieldUsername loginField = iota
	fieldPassword
)

// LoginForm is the credential prompt shown while unauthenticated. The
// password field is masked. On a rejected login the error is shown and
// both fields keep their content so the user can correct a typo.
type LoginForm struct {
	username textinput.Model
	password textinput.Model
	focus    loginField

	working bool   // Submit in flight
	errText string // Last rejection, cleared on edit

	width int
	theme *styles.Theme
}

// NewLoginForm creates the login form with the username field focused.
func NewLoginForm(theme *styles.Theme) *LoginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "  "
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "  "
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return &LoginForm{
		username: username,
		password: password,
		theme:    theme,
		width:    40,
	}
}

// Credentials returns the entered username and password.
func (f *LoginForm) Credentials() (string, string) {
	return strings.TrimSpace(f.username.Value()), f.password.Value()
}

// SetWorking toggles the in-flight indicator and input locking.
func (f *LoginForm) SetWorking(working bool) {
	f.working = working
}

// SetError displays a rejection message. The field contents are kept.
func (f *LoginForm) SetError(text string) {
	f.errText = text
	f.working = false
}

// SetSize updates the form width.
func (f *LoginForm) SetSize(width int) {
	f.width = width
	f.username.Width = width - 8
	f.password.Width = width - 8
}

// Update handles key events. It returns submit=true when the user
// pressed enter on the password field with both fields filled.
func (f *LoginForm) Update(msg tea.Msg) (*LoginForm, tea.Cmd, bool) {
	if f.working {
		return f, nil, false
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch keyMsg.String() {
		case "tab", "shift+tab", "up", "down":
			f.toggleFocus()
			return f, nil, false
		case "enter":
			if f.focus == fieldUsername {
				f.toggleFocus()
				return f, nil, false
			}
			user, pass := f.Credentials()
			if user != "" && pass != "" {
				f.errText = ""
				return f, nil, true
			}
			f.errText = "username and password are required"
			return f, nil, false
		}
		// Any edit clears the previous rejection.
		f.errText = ""
	}

	var cmd tea.Cmd
	if f.focus == fieldUsername {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd, false
}

// toggleFocus moves focus between the two fields.
func (f *LoginForm) toggleFocus() {
	if f.focus == fieldUsername {
		f.focus = fieldPassword
		f.username.Blur()
		f.password.Focus()
	} else {
		f.focus = fieldUsername
		f.password.Blur()
		f.username.Focus()
	}
}

// View renders the form.
func (f *LoginForm) View() string {
	var b strings.Builder

	b.WriteString(f.theme.LoginTitle.Render("sign in to pony express"))
	b.WriteString("\n\n")
	b.WriteString(f.theme.LoginLabel.Render("username"))
	b.WriteString("\n")
	b.WriteString(f.username.View())
	b.WriteString("\n\n")
	b.WriteString(f.theme.LoginLabel.Render("password"))
	b.WriteString("\n")
	b.WriteString(f.password.View())

	if f.working {
		b.WriteString("\n\n")
		b.WriteString(f.theme.LoginWorking.Render("signing in..."))
	} else if f.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(f.theme.LoginError.Render(styles.StatusIndicators.Error + " " + f.errText))
	}

	return f.theme.LoginBox.Width(f.width).Render(b.String())
}
