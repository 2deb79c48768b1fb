// Package status renders the top bar: connection, level, rank, XP bar and
// streak. The XP bar eases toward its target with a harmonica spring.
package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

const (
	fps      = 60
	barWidth = 24
	// settle is how close the bar must be to its target before the
	// animation stops asking for frames.
	settle = 0.05
)

// FrameMsg advances the XP bar animation by one frame.
type FrameMsg struct{}

// Model holds the status bar state.
type Model struct {
	Connected  bool
	Username   string
	Level      gamification.LevelProgress
	Rank       string
	Streak     int
	Multiplier float64
	Width      int

	spring   harmonica.Spring
	shown    float64 // percentage currently drawn
	velocity float64
	target   float64
}

// New creates a status bar model.
func New() Model {
	return Model{
		Multiplier: 1,
		spring:     harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.8),
	}
}

// SetProfile copies the displayed fields from p and retargets the XP bar.
// It returns a frame command when the bar needs to move.
func (m *Model) SetProfile(p *gamification.Profile) tea.Cmd {
	if p == nil {
		return nil
	}
	m.Username = p.Username
	m.Rank = p.Rank
	m.Streak = p.Streak
	return m.SetLevel(gamification.NextLevelProgress(p.TotalXP))
}

// SetLevel retargets the XP bar. A level change restarts the bar from empty
// so the fill always runs forward.
func (m *Model) SetLevel(lp gamification.LevelProgress) tea.Cmd {
	if lp.Level != m.Level.Level && m.Level.Level != 0 {
		m.shown, m.velocity = 0, 0
	}
	m.Level = lp
	m.target = lp.Percentage
	if m.Animating() {
		return frame()
	}
	return nil
}

// Animating reports whether the bar has not yet settled on its target.
func (m Model) Animating() bool {
	return math.Abs(m.target-m.shown) > settle || math.Abs(m.velocity) > settle
}

// Update advances the spring on FrameMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(FrameMsg); !ok {
		return m, nil
	}
	m.shown, m.velocity = m.spring.Update(m.shown, m.velocity, m.target)
	if !m.Animating() {
		m.shown, m.velocity = m.target, 0
		return m, nil
	}
	return m, frame()
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}

// View renders the status bar.
func (m Model) View() string {
	width := max(m.Width, 40)

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	parts := []string{connStr}
	if m.Username != "" {
		parts = append(parts, theme.StyleHeader.Render(m.Username))
	}
	level := fmt.Sprintf("Lv %d %s", max(m.Level.Level, 1), m.Rank)
	parts = append(parts, level, m.xpBar())
	if m.Streak > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorStreak).Render(fmt.Sprintf("🔥 %d", m.Streak)))
	}
	if m.Multiplier > 1 {
		parts = append(parts, fmt.Sprintf("x%.1f XP", m.Multiplier))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(strings.Join(parts, sep))
}

func (m Model) xpBar() string {
	if m.Level.Max {
		return lipgloss.NewStyle().Foreground(theme.ColorGold).Render("MAX LEVEL")
	}
	filled := int(math.Round(min(max(m.shown, 0), 100) / 100 * barWidth))
	bar := lipgloss.NewStyle().Foreground(theme.ColorXPFill).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.ColorXPEmpty).Render(strings.Repeat("░", barWidth-filled))
	return bar + theme.StyleDimmed.Render(fmt.Sprintf(" %d/%d XP", m.Level.Progress, m.Level.Required))
}
