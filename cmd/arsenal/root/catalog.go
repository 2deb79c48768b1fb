package root

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

func newCatalogCmd(g *globals) *cobra.Command {
	var (
		f          catalog.Filter
		difficulty string
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the challenge catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if difficulty != "" {
				f.Difficulty = gamification.Difficulty(difficulty)
				if !f.Difficulty.Valid() {
					return fmt.Errorf("unknown difficulty %q", difficulty)
				}
			}
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			page := a.Catalog.Filter(f)
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, heading(fmt.Sprintf("Challenges (%d matching)", page.Total)))
			for _, c := range page.Items {
				diff := lipgloss.NewStyle().Foreground(theme.DifficultyColor(string(c.Difficulty))).Render(fmt.Sprintf("%-12s", c.Difficulty))
				fmt.Fprintf(w, "  %-14s %s %-20s %4d XP  %s  %s\n",
					c.ID, diff, c.Category, c.Points, theme.Stars(c.Rating), c.Title)
			}
			if shown := f.Offset + len(page.Items); shown < page.Total {
				fmt.Fprintln(w, theme.StyleDimmed.Render(fmt.Sprintf("  … %d more (use --offset %d)", page.Total-shown, shown)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "filter by difficulty")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "search titles, descriptions and tags")
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "rows to show")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "rows to skip")

	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "Count challenges per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			for _, c := range a.Catalog.Categories() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-22s %4d\n", c.Label, c.Total)
			}
			return nil
		},
	})
	return cmd
}
