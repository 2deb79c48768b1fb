package root

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/tui"
	"github.com/code-arsenal/arsenal/internal/tui/client"
)

func newTUICmd(g *globals) *cobra.Command {
	var (
		serverURL string
		token     string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal client against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("url") {
				cfg.TUI.URL = serverURL
			}
			if !cmd.Flags().Changed("token") {
				token = cfg.Server.AuthToken
			}

			httpBase, wsURL, err := deriveURLs(cfg.TUI.URL)
			if err != nil {
				return err
			}
			m := tui.New(client.NewWSClient(wsURL, token), client.NewHTTPClient(httpBase, token), cfg.TUI.AutoClose)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&serverURL, "url", "", "server base URL (http://host:port)")
	cmd.Flags().StringVar(&token, "token", "", "auth token (defaults to server.auth_token)")
	return cmd
}

// deriveURLs converts http://host:port into the REST base and
// ws://host:port/ws. A ws:// or wss:// URL is accepted too.
func deriveURLs(raw string) (httpBase, wsURL string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("invalid server URL %q", raw)
	}
	httpScheme, wsScheme := "http", "ws"
	if strings.HasSuffix(u.Scheme, "s") {
		httpScheme, wsScheme = "https", "wss"
	}
	return fmt.Sprintf("%s://%s", httpScheme, u.Host), fmt.Sprintf("%s://%s/ws", wsScheme, u.Host), nil
}
