package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

func newResetCmd(g *globals) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all progress and start a fresh profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes every level, streak and achievement; pass --yes to confirm")
			}
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := a.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.StyleDimmed.Render("Progress reset. Welcome back, ")+theme.StyleHeader.Render(p.Username))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
