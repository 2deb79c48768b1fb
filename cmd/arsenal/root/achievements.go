package root

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

func newAchievementsCmd(g *globals) *cobra.Command {
	var unlockedOnly bool
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List achievements by group",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			all, progress := a.Tracker.Achievements()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, heading(fmt.Sprintf("Achievements %d/%d (%d%%)", progress.Unlocked, progress.Total, progress.Percentage)))

			for _, group := range []gamification.Group{
				gamification.GroupProgress,
				gamification.GroupSpeed,
				gamification.GroupStreaks,
				gamification.GroupMastery,
				gamification.GroupSpecial,
			} {
				var rows []string
				for _, st := range all {
					if st.Group != group || (unlockedOnly && !st.Unlocked) {
						continue
					}
					mark := theme.StyleDimmed.Render("○")
					name := theme.StyleDimmed.Render(st.Name)
					if st.Unlocked {
						mark = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("✓")
						name = st.Name
					}
					tier := lipgloss.NewStyle().Foreground(theme.TierColor(string(st.Tier))).Render(fmt.Sprintf("%-8s", st.Tier))
					rows = append(rows, fmt.Sprintf("  %s %s %s  %s", mark, tier, name, theme.StyleDimmed.Render(st.Description)))
				}
				if len(rows) == 0 {
					continue
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, theme.StyleHeader.Render(string(group)))
				for _, r := range rows {
					fmt.Fprintln(w, r)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unlockedOnly, "unlocked", false, "only show unlocked achievements")
	return cmd
}
