// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/cache"
	"github.com/ponylabs/pony-tui/internal/chats"
	"github.com/ponylabs/pony-tui/internal/config"
	"github.com/ponylabs/pony-tui/internal/model"
	"github.com/ponylabs/pony-tui/internal/session"
	"github.com/ponylabs/pony-tui/internal/ui/components"
	"github.com/ponylabs/pony-tui/internal/ui/styles"
	"github.com/ponylabs/pony-tui/internal/users"
)

// =============================================================================
// VIEW ROUTING
// =============================================================================

// View identifies which top-level screen is active.
type View int

const (
	ViewLogin View = iota
	ViewChats
	ViewProfile
)

// SnapshotReader supplies last-known offline data at startup.
type SnapshotReader interface {
	LoadChats() ([]model.Chat, error)
	LoadMessages(chatID int) ([]model.Message, error)
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	cfg *config.Config

	// Wiring
	sess     *session.Store
	client   *api.Client
	cache    *cache.Store
	chatSvc  *chats.Service
	resolver *users.Resolver
	snapshot SnapshotReader // optional

	// Program reference for delivering cache notifications from
	// goroutines outside the event loop.
	programMu sync.Mutex
	program   *tea.Program

	// Active subscriptions, keyed by the cache key string.
	unsubs map[string]func()

	// View state
	view        View
	activeChat  int // 0 while no chat is open
	user        *model.User
	chatsLoaded bool // First live chat list has resolved

	// Components
	theme     *styles.Theme
	chatList  *components.ChatList
	msgPane   *components.MessagePane
	msgInput  *components.MessageInput
	statusBar *components.StatusBar
	loginForm *components.LoginForm

	// Profile editing
	profileEditing  bool
	profileUsername string
	profileEmail    string
	profileField    int // 0 = username, 1 = email
	profileNotice   string

	width  int
	height int
}

// New assembles the root model. snapshot may be nil to disable offline
// startup data.
func New(cfg *config.Config, sess *session.Store, client *api.Client, store *cache.Store, snapshot SnapshotReader) *Model {
	theme := styles.NewTheme()
	svc := newChatService(client, store, snapshot)

	m := &Model{
		cfg:       cfg,
		sess:      sess,
		client:    client,
		cache:     store,
		chatSvc:   svc,
		resolver:  users.NewResolver(sess, client, store),
		snapshot:  snapshot,
		unsubs:    make(map[string]func()),
		theme:     theme,
		chatList:  components.NewChatList(theme, cfg.UI.PlaceholderChats, cfg.UI.CaseSensitiveFilter),
		msgPane:   components.NewMessagePane(theme, cfg.UI.RenderMarkdown),
		msgInput:  components.NewMessageInput(theme),
		statusBar: components.NewStatusBar(theme),
		loginForm: components.NewLoginForm(theme),
	}
	m.statusBar.ServerURL = client.BaseURL()

	if sess.IsAuthenticated() {
		m.view = ViewChats
		m.chatList.Focus()
	} else {
		m.view = ViewLogin
	}
	return m
}

// newChatService wires the snapshot hook only when a store is present.
// A nil interface value must not reach the service, it would fail the
// nil check there.
func newChatService(client *api.Client, store *cache.Store, snapshot SnapshotReader) *chats.Service {
	if snap, ok := snapshot.(chats.Snapshotter); ok && snapshot != nil {
		return chats.NewService(client, store, snap)
	}
	return chats.NewService(client, store, nil)
}

// SetProgram hands the model the running program so cache subscriptions
// can deliver messages into the event loop.
func (m *Model) SetProgram(p *tea.Program) {
	m.programMu.Lock()
	m.program = p
	m.programMu.Unlock()
}

// send delivers a message into the event loop from outside it.
func (m *Model) send(msg tea.Msg) {
	m.programMu.Lock()
	p := m.program
	m.programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// subscribe registers for change notifications on a cache key. Repeat
// calls for the same key are no-ops.
func (m *Model) subscribe(key cache.Key) {
	k := key.String()
	if _, ok := m.unsubs[k]; ok {
		return
	}
	m.unsubs[k] = m.cache.Subscribe(key, func(changed cache.Key) {
		m.send(CacheChangedMsg{Key: changed})
	})
}

// unsubscribeAll drops every cache subscription. Used on logout.
func (m *Model) unsubscribeAll() {
	for k, unsub := range m.unsubs {
		unsub()
		delete(m.unsubs, k)
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the initial loads for the active view.
func (m *Model) Init() tea.Cmd {
	if m.view != ViewChats {
		return nil
	}

	m.subscribe(chats.ChatsKey())
	cmds := []tea.Cmd{
		LoadUserCmd(m.resolver),
		LoadChatsCmd(m.chatSvc),
	}
	if m.snapshot != nil {
		cmds = append(cmds, m.loadSnapshotCmd())
	}
	return tea.Batch(cmds...)
}

// loadSnapshotCmd reads the offline chat list. Errors are swallowed
// here only because snapshot data is a cosmetic head start, the live
// fetch still reports its own failure.
func (m *Model) loadSnapshotCmd() tea.Cmd {
	return func() tea.Msg {
		list, err := m.snapshot.LoadChats()
		if err != nil {
			return SnapshotLoadedMsg{}
		}
		return SnapshotLoadedMsg{Chats: list}
	}
}

// Update routes messages to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.unsubscribeAll()
			return m, tea.Quit
		}

	case ChatsLoadedMsg:
		return m.handleChatsLoaded(msg)

	case MessagesLoadedMsg:
		return m.handleMessagesLoaded(msg)

	case UserLoadedMsg:
		if msg.Err != nil {
			m.statusBar.SetStatus(components.StatusError, friendlyError(msg.Err))
			return m, nil
		}
		if msg.User != nil {
			m.user = msg.User
			m.statusBar.Username = msg.User.Username
			m.msgPane.SetUsername(msg.User.Username)
		}
		return m, nil

	case LoginResultMsg:
		return m.handleLoginResult(msg)

	case PostResultMsg:
		return m.handlePostResult(msg)

	case ProfileSavedMsg:
		return m.handleProfileSaved(msg)

	case CacheChangedMsg:
		return m.handleCacheChanged(msg)

	case SnapshotLoadedMsg:
		if !m.chatsLoaded && len(msg.Chats) > 0 {
			m.chatList.SetChats(msg.Chats)
			m.statusBar.SetStatus(components.StatusOffline, "showing saved data")
		}
		return m, nil

	case SnapshotMessagesMsg:
		if msg.ChatID == m.activeChat && len(msg.Messages) > 0 {
			m.msgPane.SetMessages(msg.Messages)
		}
		return m, nil
	}

	switch m.view {
	case ViewLogin:
		return m.updateLogin(msg)
	case ViewProfile:
		return m.updateProfile(msg)
	default:
		return m.updateChats(msg)
	}
}

// layout distributes the window between the panes.
func (m *Model) layout() {
	listWidth := m.width / 3
	if listWidth < 24 {
		listWidth = 24
	}
	paneWidth := m.width - listWidth - 2
	bodyHeight := m.height - 3

	m.chatList.SetSize(listWidth, bodyHeight)
	m.msgPane.SetSize(paneWidth, bodyHeight-3)
	m.msgInput.SetSize(paneWidth)
	m.statusBar.SetWidth(m.width)
	m.loginForm.SetSize(minInt(m.width-4, 48))
}

// =============================================================================
// LOGIN VIEW
// =============================================================================

func (m *Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd, submit := m.loginForm.Update(msg)
	m.loginForm = form
	if !submit {
		return m, cmd
	}

	username, password := m.loginForm.Credentials()
	m.loginForm.SetWorking(true)
	return m, LoginCmd(m.client, m.sess, username, password)
}

func (m *Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.loginForm.SetError(friendlyError(msg.Err))
		return m, nil
	}

	m.view = ViewChats
	m.chatList.Focus()
	m.statusBar.SetStatus(components.StatusReady, "")
	m.subscribe(chats.ChatsKey())
	return m, tea.Batch(
		LoadUserCmd(m.resolver),
		LoadChatsCmd(m.chatSvc),
	)
}

// =============================================================================
// CHATS VIEW
// =============================================================================

func (m *Model) updateChats(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch keyMsg.String() {
		case "ctrl+u":
			m.openProfile()
			return m, nil
		case "tab":
			if m.chatList.Focused() && m.activeChat != 0 {
				m.chatList.Blur()
				return m, m.msgInput.Focus()
			}
			m.msgInput.Blur()
			m.chatList.Focus()
			return m, nil
		case "enter":
			if m.chatList.Focused() {
				return m.openSelectedChat()
			}
			if m.msgInput.Focused() {
				return m.submitMessage()
			}
		}
	}

	var cmds []tea.Cmd
	if m.chatList.Focused() {
		list, cmd := m.chatList.Update(msg)
		m.chatList = list
		cmds = append(cmds, cmd)
	} else {
		input, cmd := m.msgInput.Update(msg)
		m.msgInput = input
		cmds = append(cmds, cmd)

		// Only page keys reach the viewport while composing, so typing
		// a space does not scroll the history.
		if !isKey || keyMsg.String() == "pgup" || keyMsg.String() == "pgdown" {
			pane, paneCmd := m.msgPane.Update(msg)
			m.msgPane = pane
			cmds = append(cmds, paneCmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// openSelectedChat navigates to the chat under the cursor.
func (m *Model) openSelectedChat() (tea.Model, tea.Cmd) {
	chat, ok := m.chatList.Selected()
	if !ok {
		return m, nil
	}

	m.activeChat = chat.ID
	m.msgPane.SetMessages(nil)
	m.msgPane.SetStale(true)
	m.subscribe(chats.MessagesKey(chat.ID))
	m.chatList.Blur()

	return m, tea.Batch(
		LoadMessagesCmd(m.chatSvc, chat.ID),
		m.msgInput.Focus(),
	)
}

// submitMessage posts the composer draft with an optimistic pending
// entry. The draft is not cleared until the server confirms.
func (m *Model) submitMessage() (tea.Model, tea.Cmd) {
	text := m.msgInput.Value()
	if text == "" || m.activeChat == 0 {
		return m, nil
	}

	localID := uuid.NewString()
	pending := model.Message{
		ChatID:  m.activeChat,
		Text:    text,
		Pending: true,
		LocalID: localID,
	}
	if m.user != nil {
		pending.User = *m.user
	}
	m.msgPane.AppendPending(pending)
	m.statusBar.SetStatus(components.StatusLoading, "sending")

	return m, PostCmd(m.chatSvc, m.activeChat, text, localID)
}

func (m *Model) handleChatsLoaded(msg ChatsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusBar.SetStatus(components.StatusError, friendlyError(msg.Err))
		return m, nil
	}
	m.chatsLoaded = true
	m.chatList.SetChats(msg.Chats)
	if m.statusBar.Status != components.StatusLoading {
		m.statusBar.SetStatus(components.StatusReady, "")
	}
	return m, nil
}

func (m *Model) handleMessagesLoaded(msg MessagesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.ChatID != m.activeChat {
		return m, nil
	}
	if msg.Err != nil {
		m.msgPane.SetStale(false)
		m.statusBar.SetStatus(components.StatusError, friendlyError(msg.Err))
		if m.snapshot != nil {
			return m, m.loadSnapshotMessagesCmd(msg.ChatID)
		}
		return m, nil
	}
	m.msgPane.SetStale(false)
	m.msgPane.SetMessages(msg.Messages)
	return m, nil
}

// loadSnapshotMessagesCmd reads a chat's last-known messages so the
// pane is not empty while the server is unreachable. The status bar
// keeps showing the fetch failure.
func (m *Model) loadSnapshotMessagesCmd(chatID int) tea.Cmd {
	return func() tea.Msg {
		messages, err := m.snapshot.LoadMessages(chatID)
		if err != nil {
			return SnapshotMessagesMsg{ChatID: chatID}
		}
		return SnapshotMessagesMsg{ChatID: chatID, Messages: messages}
	}
}

func (m *Model) handlePostResult(msg PostResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// The draft stays in the composer for retry. Reloading from
		// the untouched cache drops the optimistic entry.
		m.statusBar.SetStatus(components.StatusError, friendlyError(msg.Err))
		return m, LoadMessagesCmd(m.chatSvc, msg.ChatID)
	}

	m.msgInput.Clear()
	m.statusBar.SetStatus(components.StatusReady, "")
	// The post already invalidated the cache; the subscription will
	// deliver the refreshed lists.
	m.msgPane.SetStale(true)
	return m, nil
}

func (m *Model) handleCacheChanged(msg CacheChangedMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Key.Equal(chats.ChatsKey()):
		return m, LoadChatsCmd(m.chatSvc)
	case m.activeChat != 0 && msg.Key.Equal(chats.MessagesKey(m.activeChat)):
		return m, LoadMessagesCmd(m.chatSvc, m.activeChat)
	}
	return m, nil
}

// =============================================================================
// PROFILE VIEW
// =============================================================================

func (m *Model) openProfile() {
	m.view = ViewProfile
	m.profileEditing = false
	m.profileNotice = ""
	if m.user != nil {
		m.profileUsername = m.user.Username
		m.profileEmail = m.user.Email
	}
}

func (m *Model) updateProfile(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return m, nil
	}

	if !m.profileEditing {
		switch keyMsg.String() {
		case "esc", "q":
			m.view = ViewChats
			m.chatList.Focus()
			m.msgInput.Blur()
		case "e":
			m.profileEditing = true
			m.profileField = 0
			m.profileNotice = ""
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.profileEditing = false
		if m.user != nil {
			m.profileUsername = m.user.Username
			m.profileEmail = m.user.Email
		}
		return m, nil
	case "tab", "down", "up":
		m.profileField = 1 - m.profileField
		return m, nil
	case "enter":
		m.profileNotice = "saving..."
		return m, SaveProfileCmd(m.client, m.profileUsername, m.profileEmail)
	case "backspace":
		field := m.editingField()
		if len(*field) > 0 {
			runes := []rune(*field)
			*field = string(runes[:len(runes)-1])
		}
		return m, nil
	default:
		if len(keyMsg.Runes) > 0 {
			*m.editingField() += string(keyMsg.Runes)
		}
		return m, nil
	}
}

func (m *Model) editingField() *string {
	if m.profileField == 0 {
		return &m.profileUsername
	}
	return &m.profileEmail
}

func (m *Model) handleProfileSaved(msg ProfileSavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.profileNotice = friendlyError(msg.Err)
		return m, nil
	}

	m.user = msg.User
	m.profileEditing = false
	m.profileNotice = "saved"
	if msg.User != nil {
		m.statusBar.Username = msg.User.Username
		m.msgPane.SetUsername(msg.User.Username)
	}
	// The cached profile entry is token-scoped; drop it so the next
	// resolve observes the update.
	m.cache.Invalidate(m.resolver.Key())
	return m, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the active screen.
func (m *Model) View() string {
	switch m.view {
	case ViewLogin:
		return m.viewLogin()
	case ViewProfile:
		return m.viewProfile()
	default:
		return m.viewChats()
	}
}

func (m *Model) viewLogin() string {
	form := m.loginForm.View()
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}

func (m *Model) viewChats() string {
	header := m.theme.Header.Width(m.width).Render(
		m.theme.HeaderBrand.Render("pony express"),
	)

	right := m.msgPane.View() + "\n" + m.msgInput.View()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.chatList.View(), right)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusBar.View())
}

func (m *Model) viewProfile() string {
	var rows []string
	rows = append(rows, m.theme.LoginTitle.Render("profile"))
	rows = append(rows, "")

	username := m.profileUsername
	email := m.profileEmail
	if m.profileEditing {
		cursor := [2]string{" ", " "}
		cursor[m.profileField] = ">"
		rows = append(rows,
			cursor[0]+m.theme.ProfileLabel.Render("username")+m.theme.ProfileValue.Render(username),
			cursor[1]+m.theme.ProfileLabel.Render("email")+m.theme.ProfileValue.Render(email),
		)
		rows = append(rows, "", m.theme.ShortcutDesc.Render("enter save / esc cancel"))
	} else {
		rows = append(rows,
			" "+m.theme.ProfileLabel.Render("username")+m.theme.ProfileValue.Render(username),
			" "+m.theme.ProfileLabel.Render("email")+m.theme.ProfileValue.Render(email),
		)
		if m.user != nil {
			rows = append(rows,
				" "+m.theme.ProfileLabel.Render("joined")+m.theme.ProfileValue.Render(m.user.JoinDate()),
			)
		}
		rows = append(rows, "", m.theme.ShortcutDesc.Render("e edit / esc back"))
	}

	if m.profileNotice != "" {
		rows = append(rows, "", m.theme.LoginWorking.Render(m.profileNotice))
	}

	box := m.theme.ProfileBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// HELPERS
// =============================================================================

// friendlyError maps transport and API failures to short display text.
func friendlyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrNetwork) {
		return "server unreachable"
	}
	if api.IsUnauthorized(err) {
		return "invalid credentials"
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if detail := apiErr.Detail(); detail != "" {
			return detail
		}
	}
	return err.Error()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
