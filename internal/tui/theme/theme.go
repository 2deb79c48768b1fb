// Package theme provides the Lip Gloss color palette and reusable styles
// for the TUI. It is a leaf package with no internal imports to avoid
// import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Difficulty colors.
var (
	ColorBeginner     = lipgloss.Color("#22c55e")
	ColorIntermediate = lipgloss.Color("#3b82f6")
	ColorAdvanced     = lipgloss.Color("#d97706")
	ColorExpert       = lipgloss.Color("#dc2626")
	ColorDefault      = lipgloss.Color("#9ca3af")
)

// Tier colors.
var (
	ColorBronze   = lipgloss.Color("#d97706")
	ColorSilver   = lipgloss.Color("#9ca3af")
	ColorGold     = lipgloss.Color("#f59e0b")
	ColorPlatinum = lipgloss.Color("#67e8f9")
)

// XP bar colors.
var (
	ColorXPFill  = lipgloss.Color("#a855f7")
	ColorXPEmpty = lipgloss.Color("#374151")
	ColorStreak  = lipgloss.Color("#f97316")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// DifficultyColor returns the color for a difficulty name.
func DifficultyColor(difficulty string) lipgloss.Color {
	switch difficulty {
	case "beginner":
		return ColorBeginner
	case "intermediate":
		return ColorIntermediate
	case "advanced":
		return ColorAdvanced
	case "expert":
		return ColorExpert
	default:
		return ColorDefault
	}
}

// TierColor returns the color for a tier name.
func TierColor(tier string) lipgloss.Color {
	switch tier {
	case "bronze":
		return ColorBronze
	case "silver":
		return ColorSilver
	case "gold":
		return ColorGold
	case "platinum":
		return ColorPlatinum
	default:
		return ColorDefault
	}
}

// Stars renders a 1-5 rating.
func Stars(rating int) string {
	rating = min(max(rating, 0), 5)
	out := ""
	for i := 0; i < 5; i++ {
		if i < rating {
			out += "★"
		} else {
			out += "☆"
		}
	}
	return out
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleToast = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(ColorBg).
			Background(ColorGold)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)
