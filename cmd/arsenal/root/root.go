// Package root holds the arsenal cobra commands.
package root

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/config"
	"github.com/code-arsenal/arsenal/internal/logging"
	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

const Version = "0.3.0"

// globals are the persistent flags every command shares.
type globals struct {
	configPath string
	logLevel   string
	storage    string
	dataDir    string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "arsenal",
		Short:         "Code Arsenal: a gamified coding challenge simulator",
		Long:          "Code Arsenal awards XP, levels and achievements for solving simulated coding challenges.\nRun `arsenal serve` for the API and `arsenal tui` for the terminal client.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", config.DefaultPath(), "path to config file")
	pf.StringVar(&g.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	pf.StringVar(&g.storage, "storage", "", "override storage.backend (file, sqlite, memory)")
	pf.StringVar(&g.dataDir, "data-dir", "", "override storage.dir")

	cmd.AddCommand(
		newServeCmd(g),
		newTUICmd(g),
		newProfileCmd(g),
		newSubmitCmd(g),
		newAchievementsCmd(g),
		newCatalogCmd(g),
		newLeaderboardCmd(g),
		newChatCmd(g),
		newResetCmd(g),
	)
	return cmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, theme.StyleError.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// load reads the config file and applies flag overrides.
func (g *globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.storage != "" {
		cfg.Storage.Backend = g.storage
	}
	if g.dataDir != "" {
		cfg.Storage.Dir = g.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *globals) logger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// openApp loads config and builds an App for the one-shot commands. Their
// logs stay quiet unless --log-level asks for them.
func (g *globals) openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := g.load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Discard()
	if g.logLevel != "" {
		logger = g.logger(cfg)
	}
	a, err := app.New(ctx, cfg, app.Options{}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = a.Close()
	}
	return a, cleanup, nil
}
