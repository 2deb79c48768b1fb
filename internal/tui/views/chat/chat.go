// Package chat provides the assistant overlay. Replies are markdown and are
// rendered with glamour; input starting with "$" goes to the built-in
// terminal instead.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/code-arsenal/arsenal/internal/assistant"
	"github.com/code-arsenal/arsenal/internal/tui/client"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

const termPrefix = "$"

// ReplyMsg carries an assistant answer.
type ReplyMsg struct {
	Reply *assistant.Reply
	Err   error
}

// TermMsg carries terminal command output.
type TermMsg struct {
	Result *assistant.TermResult
	Err    error
}

// Model holds the conversation.
type Model struct {
	ctx  context.Context
	http *client.HTTPClient

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	lines    []string
	pending  bool

	// ChallengeID is the challenge the conversation is about, if any.
	ChallengeID string

	renderer      *glamour.TermRenderer
	rendererWidth int
	width         int
	height        int
}

// New creates the overlay model.
func New(ctx context.Context, h *client.HTTPClient) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask for a hint, or $ help for the terminal"
	ti.Prompt = "> "
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorXPFill)

	m := Model{
		ctx:      ctx,
		http:     h,
		input:    ti,
		viewport: viewport.New(80, 16),
		spinner:  sp,
		lines:    []string{theme.StyleDimmed.Render("Code Arsenal assistant. esc closes.")},
	}
	m.refresh()
	return m
}

// Focus activates the input. The parent calls it when the overlay opens.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur deactivates the input.
func (m *Model) Blur() {
	m.input.Blur()
}

// Pending reports whether a request is in flight.
func (m Model) Pending() bool {
	return m.pending
}

// SetSize fits the overlay into a w×h terminal.
func (m *Model) SetSize(w, h int) {
	m.width = min(max(w-8, 40), 110)
	m.height = max(h-4, 12)
	m.viewport.Width = m.width - 4
	m.viewport.Height = m.height - 6
	m.input.Width = m.width - 8
	m.refresh()
}

// Update handles keys, replies and spinner ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case ReplyMsg:
		m.pending = false
		if msg.Err != nil {
			m.append(theme.StyleError.Render("error: " + msg.Err.Error()))
		} else {
			m.append(m.render(msg.Reply.Text))
		}
		return m, nil

	case TermMsg:
		m.pending = false
		switch {
		case msg.Err != nil:
			m.append(theme.StyleError.Render("error: " + msg.Err.Error()))
		case msg.Result.Clear:
			m.lines = nil
			m.refresh()
		default:
			m.append(msg.Result.Output)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m Model) submit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.pending {
		return m, nil
	}
	m.input.Reset()
	m.pending = true
	m.append(theme.StyleSelected.Render("you: ") + text)

	if cmd, ok := strings.CutPrefix(text, termPrefix); ok {
		return m, tea.Batch(m.spinner.Tick, m.terminal(strings.TrimSpace(cmd)))
	}
	return m, tea.Batch(m.spinner.Tick, m.ask(text))
}

func (m Model) ask(text string) tea.Cmd {
	ctx, h, id := m.ctx, m.http, m.ChallengeID
	return func() tea.Msg {
		reply, err := h.Chat(ctx, text, id)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

func (m Model) terminal(command string) tea.Cmd {
	ctx, h := m.ctx, m.http
	return func() tea.Msg {
		res, err := h.Terminal(ctx, command)
		return TermMsg{Result: res, Err: err}
	}
}

func (m *Model) append(line string) {
	m.lines = append(m.lines, line, "")
	m.refresh()
}

func (m *Model) refresh() {
	content := strings.Join(m.lines, "\n")
	if m.pending {
		content += "\n" + m.spinner.View() + theme.StyleDimmed.Render(" thinking...")
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// render turns markdown into styled terminal text, falling back to the raw
// text if glamour fails.
func (m *Model) render(md string) string {
	width := max(m.viewport.Width-2, 20)
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		m.renderer, m.rendererWidth = r, width
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// ViewOverlay renders the chat centered in a terminal of size w×h.
func (m Model) ViewOverlay(w, h int) string {
	title := theme.StyleHeader.Render("ASSISTANT")
	if m.ChallengeID != "" {
		title += theme.StyleDimmed.Render(fmt.Sprintf("  re: %s", m.ChallengeID))
	}
	inner := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.viewport.View(),
		lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("─", max(m.viewport.Width, 1))),
		m.input.View(),
	)
	box := theme.StyleBorder.Padding(0, 1).Render(inner)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}
