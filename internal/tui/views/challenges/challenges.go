// Package challenges provides the browsable challenge list with a search
// filter and category and difficulty cycling.
package challenges

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/tui/client"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

const pageSize = 50

// LoadedMsg is returned when a /api/challenges fetch completes.
type LoadedMsg struct {
	Page  *catalog.Page
	Query client.ChallengeQuery
	Err   error
}

// FetchCmd returns a Bubble Tea command that fetches one page.
func FetchCmd(ctx context.Context, h *client.HTTPClient, q client.ChallengeQuery) tea.Cmd {
	return func() tea.Msg {
		page, err := h.Challenges(ctx, q)
		return LoadedMsg{Page: page, Query: q, Err: err}
	}
}

// Model holds the list state.
type Model struct {
	items    []catalog.Challenge
	total    int
	cursor   int
	offset   int
	loading  bool
	fetchErr string

	filter        textinput.Model
	category      int // index into gamification.Categories, -1 for all
	difficulty    int // index into gamification.Difficulties, -1 for all
	hideCompleted bool

	Width  int
	Height int
}

// New returns a Model in loading state.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "search titles, tags, descriptions"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return Model{
		loading:    true,
		filter:     ti,
		category:   -1,
		difficulty: -1,
	}
}

// Query returns the request matching the current filters.
func (m Model) Query() client.ChallengeQuery {
	q := client.ChallengeQuery{
		Search:        strings.TrimSpace(m.filter.Value()),
		HideCompleted: m.hideCompleted,
		Limit:         pageSize,
		Offset:        m.offset,
	}
	if m.category >= 0 {
		q.Category = gamification.Categories[m.category]
	}
	if m.difficulty >= 0 {
		q.Difficulty = string(gamification.Difficulties[m.difficulty])
	}
	return q
}

// Filtering reports whether the search input has focus and wants every key.
func (m Model) Filtering() bool {
	return m.filter.Focused()
}

// Selected returns the challenge under the cursor.
func (m Model) Selected() (catalog.Challenge, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return catalog.Challenge{}, false
	}
	return m.items[m.cursor], true
}

// ApplyLoaded stores a fetched page. Responses for a stale query are dropped.
func (m *Model) ApplyLoaded(msg LoadedMsg) {
	if msg.Query != m.Query() {
		return
	}
	m.loading = false
	if msg.Err != nil {
		m.fetchErr = msg.Err.Error()
		return
	}
	m.fetchErr = ""
	m.items = msg.Page.Items
	m.total = msg.Page.Total
	m.cursor = min(m.cursor, max(len(m.items)-1, 0))
}

// MarkCompleted flags id as solved without a refetch.
func (m *Model) MarkCompleted(id string) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Completed = true
			return
		}
	}
}

// Update handles a key. refetch is true when the filters changed and the
// caller should issue FetchCmd with the new Query.
func (m Model) Update(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if m.filter.Focused() {
		var cmd tea.Cmd
		switch msg.String() {
		case "enter", "esc":
			m.filter.Blur()
			return m, nil, false
		}
		before := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.offset, m.cursor = 0, 0
			return m, cmd, true
		}
		return m, cmd, false
	}

	switch msg.String() {
	case "/":
		return m, m.filter.Focus(), false
	case "j", "down":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "c":
		m.category = cycle(m.category, len(gamification.Categories))
		return m.reset(), nil, true
	case "v":
		m.difficulty = cycle(m.difficulty, len(gamification.Difficulties))
		return m.reset(), nil, true
	case "h":
		m.hideCompleted = !m.hideCompleted
		return m.reset(), nil, true
	case "n", "pgdown":
		if m.offset+pageSize < m.total {
			m.offset += pageSize
			m.cursor = 0
			m.loading = true
			return m, nil, true
		}
	case "p", "pgup":
		if m.offset > 0 {
			m.offset = max(m.offset-pageSize, 0)
			m.cursor = 0
			m.loading = true
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m Model) reset() Model {
	m.offset, m.cursor = 0, 0
	m.loading = true
	return m
}

// cycle steps through -1 (all), 0..n-1.
func cycle(i, n int) int {
	i++
	if i >= n {
		return -1
	}
	return i
}

// View renders the list.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.StyleHeader.Render("CHALLENGES") + "  " + m.filterSummary() + "\n")
	b.WriteString(m.filter.View() + "\n")

	switch {
	case m.fetchErr != "":
		b.WriteString(theme.StyleError.Render("Error: " + m.fetchErr))
		return b.String()
	case m.loading && len(m.items) == 0:
		b.WriteString(theme.StyleDimmed.Render("Loading..."))
		return b.String()
	case len(m.items) == 0:
		b.WriteString(theme.StyleDimmed.Render("  No challenges match these filters"))
		return b.String()
	}

	rows := max(m.Height-4, 5)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(m.items) && i < start+rows; i++ {
		b.WriteString(m.renderRow(i) + "\n")
	}
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %d-%d of %d", m.offset+1, m.offset+len(m.items), m.total)))
	return b.String()
}

func (m Model) filterSummary() string {
	cat, diff := "all categories", "all difficulties"
	if m.category >= 0 {
		cat = gamification.Categories[m.category]
	}
	if m.difficulty >= 0 {
		diff = string(gamification.Difficulties[m.difficulty])
	}
	s := cat + " · " + diff
	if m.hideCompleted {
		s += " · unsolved"
	}
	return theme.StyleDimmed.Render("[" + s + "]")
}

func (m Model) renderRow(i int) string {
	c := m.items[i]
	prefix := "  "
	if i == m.cursor {
		prefix = "> "
	}
	mark := theme.StyleDimmed.Render("○")
	if c.Completed {
		mark = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("✓")
	}
	title := truncate(c.Title, max(m.Width-48, 20))
	if i == m.cursor {
		title = theme.StyleSelected.Render(title)
	}
	diff := lipgloss.NewStyle().Foreground(theme.DifficultyColor(string(c.Difficulty))).Width(13).Render(string(c.Difficulty))
	return fmt.Sprintf("%s%s %s %s %4d XP  %s", prefix, mark, diff, title, c.Points,
		theme.StyleDimmed.Render(theme.Stars(c.Rating)))
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
