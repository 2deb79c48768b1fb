package root

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newChatCmd(g *globals) *cobra.Command {
	var (
		challengeID string
		plain       bool
	)
	cmd := &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Ask the assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if challengeID != "" {
				if _, _, err := a.Open(challengeID); err != nil {
					return err
				}
			}
			reply := a.Chat(strings.Join(args, " "), challengeID)

			out := reply.Text
			if !plain {
				out = renderMarkdown(reply.Text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&challengeID, "challenge", "", "ask about this challenge")
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

// renderMarkdown styles md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w-4, 120)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
