package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

func newLeaderboardCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank the player among the rivals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, heading("Leaderboard"))
			for _, e := range a.Leaderboard() {
				row := fmt.Sprintf("  %3d. %-16s Lv %-3d %8d XP  %4d solved  🔥%d",
					e.Rank, e.Username, e.Level, e.XP, e.ChallengesSolved, e.Streak)
				if e.You {
					row = theme.StyleSelected.Foreground(theme.ColorGold).Render(row + "  ← you")
				}
				fmt.Fprintln(w, row)
			}
			return nil
		},
	}
}
