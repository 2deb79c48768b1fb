// Package toast shows short-lived notifications for rewards, level-ups and
// unlocked achievements.
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 4 * time.Second

// ExpireMsg hides toast seq if it is still the newest one.
type ExpireMsg struct{ seq int }

type item struct {
	text  string
	color lipgloss.Color
}

// Model queues toasts and shows the newest few.
type Model struct {
	items []item
	seq   int
	// Limit caps how many toasts are stacked at once.
	Limit int
}

// New creates an empty toast stack.
func New() Model {
	return Model{Limit: 3}
}

// Push adds a toast and returns the command that expires it.
func (m *Model) Push(text string, color lipgloss.Color) tea.Cmd {
	m.items = append(m.items, item{text: text, color: color})
	if over := len(m.items) - m.Limit; m.Limit > 0 && over > 0 {
		m.items = m.items[over:]
	}
	m.seq++
	seq := m.seq
	return tea.Tick(DefaultDuration, func(time.Time) tea.Msg { return ExpireMsg{seq: seq} })
}

// Update drops the oldest toast when one expires. Once the newest toast
// has expired the stack is cleared.
func (m Model) Update(msg ExpireMsg) Model {
	if len(m.items) == 0 {
		return m
	}
	if msg.seq == m.seq {
		m.items = nil
		return m
	}
	m.items = m.items[1:]
	return m
}

// Len returns the number of visible toasts.
func (m Model) Len() int {
	return len(m.items)
}

// View renders the stack, newest last, or "" when empty.
func (m Model) View() string {
	if len(m.items) == 0 {
		return ""
	}
	rows := make([]string, 0, len(m.items))
	for _, it := range m.items {
		rows = append(rows, theme.StyleToast.Background(it.color).Render(it.text))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rows...)
}
