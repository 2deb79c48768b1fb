package root

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/demo"
	"github.com/code-arsenal/arsenal/internal/metrics"
	"github.com/code-arsenal/arsenal/internal/ws"
)

func newServeCmd(g *globals) *cobra.Command {
	var (
		host         string
		port         int
		token        string
		demoPace     string
		demoInterval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("token") {
				cfg.Server.AuthToken = token
			}
			var pace demo.Pace
			if demoPace != "" {
				var ok bool
				if pace, ok = demo.ParsePace(demoPace); !ok {
					return fmt.Errorf("--demo must be steady, burst or stall, got %q", demoPace)
				}
				if demoInterval <= 0 {
					return fmt.Errorf("--demo-interval must be positive")
				}
			}
			logger := g.logger(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, app.Options{}, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}
			a.Tracker.SetObserver(m)

			broadcaster := ws.NewBroadcaster(cfg.Server.MaxConns, logger)
			broadcaster.OnClientCount(m.SetClients)
			broadcaster.Attach(a)
			defer broadcaster.Close()

			p := a.Tracker.StartSession(ctx)
			m.ObserveLevel(p.Level)

			server := ws.NewServer(a, broadcaster, cfg.Server, cfg.Assistant.ThinkingDelay,
				promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)

			if pace != "" {
				demo.NewPlayer(a, pace, demoInterval, time.Now().UnixNano(), logger).Start(ctx)
			}

			logger.Info("player loaded", "username", p.Username, "level", p.Level, "xp", p.TotalXP)
			if cfg.Server.AuthToken == "" && !isLoopbackHost(cfg.Server.Host) {
				logger.Warn("serving on a non-loopback address without an auth token", "host", cfg.Server.Host)
			}
			return ws.ListenAndServe(ctx, cfg.Addr(), server.Handler(), logger)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "override server.host")
	cmd.Flags().IntVar(&port, "port", 0, "override server.port")
	cmd.Flags().StringVar(&token, "token", "", "override server.auth_token")
	cmd.Flags().StringVar(&demoPace, "demo", "", "simulate a player: steady, burst or stall")
	cmd.Flags().DurationVar(&demoInterval, "demo-interval", 3*time.Second, "time between simulated player ticks")
	return cmd
}

func isLoopbackHost(host string) bool {
	switch host {
	case "127.0.0.1", "localhost", "::1":
		return true
	}
	return false
}
