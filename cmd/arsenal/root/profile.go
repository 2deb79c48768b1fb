package root

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

func newProfileCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show player level, stats and insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			printProfile(cmd.OutOrStdout(), a.Tracker.Profile(), a.Stats())
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rename NAME",
		Short: "Change the display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			p, err := a.Tracker.Rename(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Renamed to "+theme.StyleHeader.Render(p.Username))
			return nil
		},
	})
	return cmd
}

func heading(s string) string {
	return theme.StyleHeader.Underline(true).Render(s)
}

func label(k string, v any) string {
	return fmt.Sprintf("  %-16s %v", theme.StyleDimmed.Render(k), v)
}

func printProfile(w io.Writer, p *gamification.Profile, st app.Stats) {
	fmt.Fprintln(w, heading(fmt.Sprintf("%s · Lv %d %s", p.Username, p.Level, p.Rank)))
	lp := st.Level
	if lp.Max {
		fmt.Fprintln(w, label("XP", fmt.Sprintf("%d (max level)", p.TotalXP)))
	} else {
		fmt.Fprintln(w, label("XP", fmt.Sprintf("%d (%d/%d to next, %.0f%%)", p.TotalXP, lp.Progress, lp.Required, lp.Percentage)))
	}
	streak := fmt.Sprintf("%d (best %d)", p.Streak, p.MaxStreak)
	if p.Streak > 0 {
		streak = lipgloss.NewStyle().Foreground(theme.ColorStreak).Render(streak)
	}
	fmt.Fprintln(w, label("Streak", streak))
	fmt.Fprintln(w, label("Solved", p.ChallengesSolved))
	fmt.Fprintln(w, label("Success rate", fmt.Sprintf("%d%%", p.SuccessRate)))
	if p.FastestSolve != nil {
		fmt.Fprintln(w, label("Fastest", fmt.Sprintf("%ds (avg %ds)", *p.FastestSolve, p.AvgSolveTime)))
	}
	fmt.Fprintln(w, label("Sessions", p.TotalSessions))
	fmt.Fprintln(w, label("Joined", p.JoinDate))
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading("This period"))
	fmt.Fprintln(w, label("Today", fmt.Sprintf("%d solved, %d XP", st.Periods.Daily.ChallengesSolved, st.Periods.Daily.XPEarned)))
	fmt.Fprintln(w, label("This week", fmt.Sprintf("%d solved, %d XP", st.Periods.Weekly.ChallengesSolved, st.Periods.Weekly.XPEarned)))
	fmt.Fprintln(w, label("This month", fmt.Sprintf("%d solved, %d XP", st.Periods.Monthly.ChallengesSolved, st.Periods.Monthly.XPEarned)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading("Skills"))
	skills := make([]string, 0, len(p.SkillPoints))
	for s := range p.SkillPoints {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool {
		if p.SkillPoints[skills[i]] != p.SkillPoints[skills[j]] {
			return p.SkillPoints[skills[i]] > p.SkillPoints[skills[j]]
		}
		return skills[i] < skills[j]
	})
	for _, s := range skills {
		pts := p.SkillPoints[s]
		bar := lipgloss.NewStyle().Foreground(theme.ColorXPFill).Render(strings.Repeat("█", pts/5)) +
			lipgloss.NewStyle().Foreground(theme.ColorXPEmpty).Render(strings.Repeat("░", 20-pts/5))
		fmt.Fprintf(w, "  %-20s %s %3d\n", s, bar, pts)
	}
	fmt.Fprintln(w)

	in := st.Insights
	fmt.Fprintln(w, heading("Insights"))
	fmt.Fprintln(w, label("Favorite", in.FavoriteCategory))
	fmt.Fprintln(w, label("Consistency", fmt.Sprintf("%d/100", in.ConsistencyScore)))
	fmt.Fprintln(w, label("Velocity", fmt.Sprintf("%.1f solves/day", in.LearningVelocity)))
	for _, r := range in.Recommendations {
		fmt.Fprintln(w, "  • "+r)
	}
}
