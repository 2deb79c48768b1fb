// Package detail renders an opened challenge: its description, starter code
// and attempt state, and the reward breakdown after a submit.
package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/tui/client"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
	"github.com/code-arsenal/arsenal/internal/ws"
)

// OpenedMsg is returned when POST /open completes.
type OpenedMsg struct {
	Resp *ws.OpenResponse
	Err  error
}

// SubmittedMsg is returned when POST /submit completes.
type SubmittedMsg struct {
	Resp *ws.SubmitResponse
	Err  error
}

// CloseMsg asks the parent to close the overlay after a solve.
type CloseMsg struct{ ChallengeID string }

// OpenCmd opens challenge id on the server.
func OpenCmd(ctx context.Context, h *client.HTTPClient, id string) tea.Cmd {
	return func() tea.Msg {
		resp, err := h.Open(ctx, id)
		return OpenedMsg{Resp: resp, Err: err}
	}
}

// SubmitCmd submits challenge id; the server measures elapsed time.
func SubmitCmd(ctx context.Context, h *client.HTTPClient, id string) tea.Cmd {
	return func() tea.Msg {
		resp, err := h.Submit(ctx, id, 0)
		return SubmittedMsg{Resp: resp, Err: err}
	}
}

// Model holds the overlay state.
type Model struct {
	ctx       context.Context
	http      *client.HTTPClient
	autoClose time.Duration

	open       *ws.OpenResponse
	last       *ws.SubmitResponse
	submitting bool
	err        string
}

// New creates the overlay. autoClose is how long a solved challenge stays
// on screen; zero keeps it open until esc.
func New(ctx context.Context, h *client.HTTPClient, autoClose time.Duration) Model {
	return Model{ctx: ctx, http: h, autoClose: autoClose}
}

// Reset clears the overlay before a new challenge is opened.
func (m *Model) Reset() {
	m.open, m.last, m.err, m.submitting = nil, nil, "", false
}

// ChallengeID returns the open challenge, or "".
func (m Model) ChallengeID() string {
	if m.open == nil {
		return ""
	}
	return m.open.Challenge.ID
}

// Solved reports whether the last submit passed.
func (m Model) Solved() bool {
	return m.last != nil && m.last.Success
}

// Update handles keys and API results.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OpenedMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.open, m.err = msg.Resp, ""
		return m, nil

	case SubmittedMsg:
		m.submitting = false
		if m.open == nil {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.last, m.err = msg.Resp, ""
		m.open.Attempt.Submissions = msg.Resp.Attempts
		if msg.Resp.Success {
			m.open.Challenge.Completed = true
			if m.autoClose > 0 {
				id := m.open.Challenge.ID
				return m, tea.Tick(m.autoClose, func(time.Time) tea.Msg { return CloseMsg{ChallengeID: id} })
			}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "s" && m.open != nil && !m.submitting && !m.Solved() {
			m.submitting = true
			return m, SubmitCmd(m.ctx, m.http, m.open.Challenge.ID)
		}
	}
	return m, nil
}

// ViewOverlay renders the challenge centered in a terminal of size w×h.
func (m Model) ViewOverlay(w, h int) string {
	mw := min(max(w-8, 60), 100)
	box := theme.StyleBorder.
		Width(mw).
		Padding(1, 2).
		Render(m.renderInner(mw - 4))
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderInner(w int) string {
	if m.open == nil {
		if m.err != "" {
			return theme.StyleError.Render("Error: " + m.err)
		}
		return theme.StyleDimmed.Render("Opening...")
	}

	c := m.open.Challenge
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render(c.Title) + "\n")
	diff := lipgloss.NewStyle().Foreground(theme.DifficultyColor(string(c.Difficulty))).Render(string(c.Difficulty))
	fmt.Fprintf(&b, "%s · %s · %d XP · %s · %s\n\n", diff, c.Category, c.Points,
		time.Duration(c.TimeLimit)*time.Second, theme.Stars(c.Rating))
	b.WriteString(lipgloss.NewStyle().Width(w).Render(c.Description) + "\n\n")
	b.WriteString(theme.StyleDimmed.Render(m.open.StarterCode) + "\n")

	att := m.open.Attempt
	fmt.Fprintf(&b, "Submissions: %d\n", att.Submissions)

	if m.last != nil {
		b.WriteString("\n" + m.renderResult() + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + theme.StyleError.Render("Error: "+m.err) + "\n")
	}

	help := "s submit  c ask assistant  esc close"
	switch {
	case m.submitting:
		help = "Grading..."
	case m.Solved():
		help = "Solved! esc close"
	}
	b.WriteString("\n" + theme.StyleDimmed.Render(help))
	return b.String()
}

func (m Model) renderResult() string {
	r := m.last
	if !r.Success {
		s := theme.StyleError.Render(fmt.Sprintf("✗ Tests failed (attempt %d)", r.Attempts))
		if r.Hint {
			s += "\n" + lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("Stuck? Press c to ask the assistant for a hint.")
		}
		return s
	}

	out := lipgloss.NewStyle().Foreground(theme.ColorHealthy).Bold(true).Render("✓ Solved!")
	if r.Outcome.Breakdown != nil {
		out += "\n" + Breakdown(*r.Outcome.Breakdown)
	}
	if p := r.Outcome.Progress; p != nil && p.LeveledUp {
		out += "\n" + lipgloss.NewStyle().Foreground(theme.ColorGold).Render(fmt.Sprintf("LEVEL UP! %d → %d (%s)", p.PreviousLevel, p.Level, p.Rank))
	}
	for _, a := range r.Unlocked {
		out += "\n" + lipgloss.NewStyle().Foreground(theme.TierColor(a.Tier)).Render("🏆 "+a.Name)
	}
	return out
}

// Breakdown renders the per-stage reward computation.
func Breakdown(b gamification.RewardBreakdown) string {
	rows := []struct {
		label string
		mult  float64
		bonus int
	}{
		{"category", b.CategoryMultiplier, b.CategoryBonus},
		{"time", b.TimeMultiplier, b.TimeBonus},
		{"attempts", b.AttemptMultiplier, b.AttemptBonus},
		{"streak", b.StreakMultiplier, b.StreakBonus},
		{"session", b.GlobalMultiplier, b.GlobalBonus},
	}
	lines := []string{fmt.Sprintf("  base       %4d", b.Base)}
	for _, r := range rows {
		if r.bonus == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-9s x%.2f %+d", r.label, r.mult, r.bonus))
	}
	lines = append(lines, theme.StyleSelected.Render(fmt.Sprintf("  total      %4d XP", b.FinalXP)))
	return strings.Join(lines, "\n")
}
