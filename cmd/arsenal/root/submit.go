package root

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
	"github.com/code-arsenal/arsenal/internal/tui/views/detail"
)

func newSubmitCmd(g *globals) *cobra.Command {
	var elapsed int
	cmd := &cobra.Command{
		Use:   "submit CHALLENGE-ID",
		Short: "Grade one attempt at a challenge offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := a.Submit(cmd.Context(), args[0], elapsed)
			if err != nil {
				return err
			}
			printSubmit(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVar(&elapsed, "elapsed", 300, "seconds spent on the attempt")
	return cmd
}

func printSubmit(w io.Writer, res app.SubmitResult) {
	c := res.Challenge
	fmt.Fprintln(w, heading(fmt.Sprintf("%s (%s, %s)", c.Title, c.Difficulty, c.Category)))
	if !res.Success {
		fmt.Fprintln(w, theme.StyleError.Render(fmt.Sprintf("✗ Tests failed (attempt %d)", res.Attempts)))
		if res.Hint {
			fmt.Fprintln(w, theme.StyleDimmed.Render("  Try `arsenal chat` for a hint."))
		}
		return
	}

	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(theme.ColorHealthy).Bold(true).Render("✓ Solved!"))
	out := res.Outcome
	if out.Breakdown != nil {
		fmt.Fprintln(w, detail.Breakdown(*out.Breakdown))
	}
	if p := out.Progress; p != nil && p.LeveledUp {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(theme.ColorGold).Bold(true).
			Render(fmt.Sprintf("LEVEL UP! %d → %d (%s)", p.PreviousLevel, p.Level, p.Rank)))
		for _, perk := range p.Perks {
			fmt.Fprintln(w, "  ✨ "+perk.Message)
		}
	}
	for _, a := range out.Unlocked {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(theme.TierColor(string(a.Tier))).
			Render(fmt.Sprintf("🏆 %s: %s", a.Name, a.Description)))
	}
}
