// Package achievements provides the achievements modal overlay for the TUI.
package achievements

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/tui/client"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
	"github.com/code-arsenal/arsenal/internal/ws"
)

// groups defines the tab order for the panel.
var groups = []gamification.Group{
	gamification.GroupProgress,
	gamification.GroupSpeed,
	gamification.GroupStreaks,
	gamification.GroupMastery,
	gamification.GroupSpecial,
}

// LoadedMsg is returned when the /api/achievements fetch completes.
type LoadedMsg struct {
	Items []ws.AchievementPayload
	Err   error
}

// FetchCmd returns a Bubble Tea command that fetches achievements via HTTP.
func FetchCmd(ctx context.Context, h *client.HTTPClient) tea.Cmd {
	return func() tea.Msg {
		resp, err := h.Achievements(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Items: resp.Achievements}
	}
}

// Model holds the achievements panel state.
type Model struct {
	items     []ws.AchievementPayload
	activeTab int
	scroll    int
	loading   bool
	fetchErr  string
}

// New returns a Model in loading state.
func New() Model {
	return Model{loading: true}
}

// ApplyUnlock marks an achievement as unlocked when the WS notification
// arrives.
func (m *Model) ApplyUnlock(id string) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Unlocked = true
			return
		}
	}
}

// Update processes key messages forwarded from the parent when this overlay
// is active.
func (m Model) Update(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "left", "h":
		if m.activeTab > 0 {
			m.activeTab--
			m.scroll = 0
		}
	case "right", "l":
		if m.activeTab < len(groups)-1 {
			m.activeTab++
			m.scroll = 0
		}
	case "tab":
		m.activeTab = (m.activeTab + 1) % len(groups)
		m.scroll = 0
	case "j", "down":
		m.scroll++
	case "k", "up":
		if m.scroll > 0 {
			m.scroll--
		}
	}
	return m
}

// ApplyLoaded stores fetched achievements.
func (m *Model) ApplyLoaded(msg LoadedMsg) {
	m.loading = false
	if msg.Err != nil {
		m.fetchErr = msg.Err.Error()
		return
	}
	m.items = msg.Items
	m.fetchErr = ""
}

// ViewOverlay renders the panel centered in a terminal of size w×h.
func (m Model) ViewOverlay(w, h int) string {
	mw := clamp(w-8, 60, 110)
	mh := max(h-4, 16)

	box := lipgloss.NewStyle().
		Width(mw).
		Height(mh).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(m.renderInner(mw-4, mh-2))

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderInner(w, h int) string {
	var b strings.Builder

	unlockedAll := 0
	for _, a := range m.items {
		if a.Unlocked {
			unlockedAll++
		}
	}
	title := theme.StyleHeader.Render("ACHIEVEMENTS")
	if len(m.items) > 0 {
		title += theme.StyleDimmed.Render(fmt.Sprintf("  %d / %d", unlockedAll, len(m.items)))
	}
	b.WriteString(title + "\n\n")

	if m.loading {
		b.WriteString(theme.StyleDimmed.Render("Loading..."))
		return b.String()
	}
	if m.fetchErr != "" {
		b.WriteString(theme.StyleError.Render("Error: " + m.fetchErr))
		return b.String()
	}

	var tabs []string
	for i, g := range groups {
		if i == m.activeTab {
			tabs = append(tabs, theme.StyleSelected.Underline(true).Render(string(g)))
		} else {
			tabs = append(tabs, theme.StyleDimmed.Render(string(g)))
		}
	}
	b.WriteString(strings.Join(tabs, "  ") + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("─", w)) + "\n")

	filtered := filterByGroup(m.items, groups[m.activeTab])
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("%d / %d unlocked", countUnlocked(filtered), len(filtered))) + "\n\n")

	// Each row takes two lines: name and description.
	maxItems := max((h-7)/2, 1)
	start := clamp(m.scroll, 0, max(len(filtered)-1, 0))

	shown := 0
	for i := start; i < len(filtered) && shown < maxItems; i++ {
		a := filtered[i]
		lockGlyph := theme.StyleDimmed.Render("○")
		nameStyle := theme.StyleDimmed
		if a.Unlocked {
			lockGlyph = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("✓")
			nameStyle = lipgloss.NewStyle().Foreground(theme.ColorBright)
		}
		b.WriteString(lockGlyph + " " + tierBadge(a.Tier) + " " + nameStyle.Render(a.Name) + "\n")
		b.WriteString(theme.StyleDimmed.Render("    "+truncate(a.Description, w-5)) + "\n")
		shown++
	}

	if len(filtered) == 0 {
		b.WriteString(theme.StyleDimmed.Render("No achievements in this group."))
	}
	if remaining := len(filtered) - start - shown; remaining > 0 {
		b.WriteString("\n" + theme.StyleDimmed.Render(fmt.Sprintf("↓ %d more (j/k to scroll)", remaining)))
	}

	b.WriteString("\n\n" + theme.StyleDimmed.Render("←/→ tab  j/k scroll  esc close"))
	return b.String()
}

// tierBadge returns a compact colored badge for a tier name.
func tierBadge(tier string) string {
	label := "[?]"
	switch gamification.Tier(tier) {
	case gamification.TierBronze:
		label = "[B]"
	case gamification.TierSilver:
		label = "[S]"
	case gamification.TierGold:
		label = "[G]"
	case gamification.TierPlatinum:
		label = "[P]"
	}
	return lipgloss.NewStyle().Foreground(theme.TierColor(tier)).Bold(true).Render(label)
}

func filterByGroup(items []ws.AchievementPayload, g gamification.Group) []ws.AchievementPayload {
	var out []ws.AchievementPayload
	for _, a := range items {
		if a.Group == string(g) {
			out = append(out, a)
		}
	}
	return out
}

func countUnlocked(items []ws.AchievementPayload) int {
	n := 0
	for _, a := range items {
		if a.Unlocked {
			n++
		}
	}
	return n
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

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
