// Package tui is the Bubble Tea terminal client: a challenge list with a
// status bar, and overlays for challenge detail, achievements and the
// assistant.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/code-arsenal/arsenal/internal/tui/client"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
	"github.com/code-arsenal/arsenal/internal/tui/views/achievements"
	"github.com/code-arsenal/arsenal/internal/tui/views/challenges"
	"github.com/code-arsenal/arsenal/internal/tui/views/chat"
	"github.com/code-arsenal/arsenal/internal/tui/views/detail"
	"github.com/code-arsenal/arsenal/internal/tui/views/status"
	"github.com/code-arsenal/arsenal/internal/tui/views/toast"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayAchievements
	OverlayChat
)

// Model is the root Bubble Tea model.
type Model struct {
	ws     *client.WSClient
	http   *client.HTTPClient
	ctx    context.Context
	cancel context.CancelFunc

	keys    KeyMap
	width   int
	height  int
	overlay Overlay

	// Sub-views.
	statusBar    status.Model
	list         challenges.Model
	detail       detail.Model
	achievements achievements.Model
	chat         chat.Model
	toasts       toast.Model

	connected bool
}

// New creates the root model. autoClose is how long a solved challenge
// stays open before the detail overlay closes itself.
func New(ws *client.WSClient, http *client.HTTPClient, autoClose time.Duration) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ws:           ws,
		http:         http,
		ctx:          ctx,
		cancel:       cancel,
		keys:         DefaultKeyMap(),
		statusBar:    status.New(),
		list:         challenges.New(),
		detail:       detail.New(ctx, http, autoClose),
		achievements: achievements.New(),
		chat:         chat.New(ctx, http),
		toasts:       toast.New(),
	}
}

// Init starts the WebSocket connection and the first catalog fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.ws.Listen(m.ctx),
		challenges.FetchCmd(m.ctx, m.http, m.list.Query()),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.list.Width = msg.Width
		m.list.Height = msg.Height - 5
		m.chat.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case client.WSConnectedMsg:
		m.connected = true
		m.statusBar.Connected = true
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSDisconnectedMsg:
		m.connected = false
		m.statusBar.Connected = false
		return m, m.ws.Listen(m.ctx)

	case client.WSSnapshotMsg:
		cmd := m.statusBar.SetProfile(msg.Payload.Profile)
		m.statusBar.Multiplier = msg.Payload.Session.Multiplier
		return m, tea.Batch(cmd, m.ws.ReadLoop(m.ctx))

	case client.WSProfileMsg:
		cmd := m.statusBar.SetProfile(msg.Profile)
		return m, tea.Batch(cmd, m.ws.ReadLoop(m.ctx))

	case client.WSRewardMsg:
		m.list.MarkCompleted(msg.Payload.ChallengeID)
		cmds := []tea.Cmd{
			m.statusBar.SetProfile(msg.Payload.Profile),
			m.toasts.Push(fmt.Sprintf("+%d XP", msg.Payload.Breakdown.FinalXP), theme.ColorXPFill),
			m.ws.ReadLoop(m.ctx),
		}
		return m, tea.Batch(cmds...)

	case client.WSLevelUpMsg:
		p := msg.Progress
		cmds := []tea.Cmd{
			m.toasts.Push(fmt.Sprintf("LEVEL UP! Lv %d %s", p.Level, p.Rank), theme.ColorGold),
			m.ws.ReadLoop(m.ctx),
		}
		for _, perk := range p.Perks {
			cmds = append(cmds, m.toasts.Push(perk.Message, theme.ColorPlatinum))
		}
		return m, tea.Batch(cmds...)

	case client.WSAchievementMsg:
		m.achievements.ApplyUnlock(msg.Payload.ID)
		return m, tea.Batch(
			m.toasts.Push("🏆 "+msg.Payload.Name, theme.TierColor(msg.Payload.Tier)),
			m.ws.ReadLoop(m.ctx),
		)

	case client.WSSessionMsg:
		m.statusBar.Multiplier = msg.Payload.Multiplier
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSErrorMsg:
		return m, tea.Batch(m.toasts.Push(msg.Message, theme.ColorDanger), m.ws.ReadLoop(m.ctx))

	case status.FrameMsg:
		var cmd tea.Cmd
		m.statusBar, cmd = m.statusBar.Update(msg)
		return m, cmd

	case toast.ExpireMsg:
		m.toasts = m.toasts.Update(msg)
		return m, nil

	case challenges.LoadedMsg:
		m.list.ApplyLoaded(msg)
		return m, nil

	case achievements.LoadedMsg:
		m.achievements.ApplyLoaded(msg)
		return m, nil

	case detail.OpenedMsg, detail.SubmittedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.CloseMsg:
		if m.overlay == OverlayDetail && m.detail.ChallengeID() == msg.ChallengeID {
			m.overlay = OverlayNone
		}
		return m, nil

	case chat.ReplyMsg, chat.TermMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.cancel()
		return m, tea.Quit
	}

	switch m.overlay {
	case OverlayChat:
		if key.Matches(msg, m.keys.Escape) {
			m.chat.Blur()
			m.overlay = OverlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case OverlayDetail:
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
			return m, nil
		case msg.String() == "c":
			return m.openChat(m.detail.ChallengeID())
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case OverlayAchievements:
		if key.Matches(msg, m.keys.Escape) {
			m.overlay = OverlayNone
			return m, nil
		}
		m.achievements = m.achievements.Update(msg)
		return m, nil
	}

	if m.list.Filtering() {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Enter):
		c, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		m.detail.Reset()
		m.overlay = OverlayDetail
		return m, detail.OpenCmd(m.ctx, m.http, c.ID)

	case key.Matches(msg, m.keys.Achievements):
		m.overlay = OverlayAchievements
		return m, achievements.FetchCmd(m.ctx, m.http)

	case key.Matches(msg, m.keys.Chat):
		return m.openChat("")

	case key.Matches(msg, m.keys.Refresh):
		return m, challenges.FetchCmd(m.ctx, m.http, m.list.Query())
	}

	return m.updateList(msg)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list, cmd, refetch := m.list.Update(msg)
	m.list = list
	if refetch {
		cmd = tea.Batch(cmd, challenges.FetchCmd(m.ctx, m.http, m.list.Query()))
	}
	return m, cmd
}

func (m Model) openChat(challengeID string) (tea.Model, tea.Cmd) {
	m.overlay = OverlayChat
	m.chat.ChallengeID = challengeID
	return m, m.chat.Focus()
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if !m.connected {
		return m.renderDisconnected()
	}

	switch m.overlay {
	case OverlayDetail:
		return m.detail.ViewOverlay(m.width, m.height)
	case OverlayAchievements:
		return m.achievements.ViewOverlay(m.width, m.height)
	case OverlayChat:
		return m.chat.ViewOverlay(m.width, m.height)
	}

	sections := []string{m.statusBar.View(), m.list.View()}
	if t := m.toasts.View(); t != "" {
		sections = append(sections, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, t))
	}
	sections = append(sections, m.helpView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) helpView() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return theme.StyleDimmed.Render("  " + strings.Join(parts, "  "))
}

func (m Model) renderDisconnected() string {
	box := theme.StyleBorder.
		BorderForeground(theme.ColorDanger).
		Padding(1, 4).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDanger).Render("DISCONNECTED"),
			"",
			theme.StyleDimmed.Render("Reconnecting to the arsenal server..."),
		))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
