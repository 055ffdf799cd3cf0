package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"

	"github.com/janktuber/nowplaying/server/internal/api"
	"github.com/janktuber/nowplaying/server/internal/config"
	"github.com/janktuber/nowplaying/server/internal/metrics"
	"github.com/janktuber/nowplaying/server/internal/router"
	"github.com/janktuber/nowplaying/server/internal/status"
	"github.com/janktuber/nowplaying/server/internal/watch"
	"github.com/janktuber/nowplaying/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional when NOW_PLAYING_PATH is set)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("nowplaying-server starting", "config", *configPath)

	if err := config.LoadEnvFile(*envFile); err != nil {
		slog.Error("failed to load env file", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"now_playing_path", cfg.NowPlaying.Path,
		"poll_interval", cfg.NowPlaying.PollInterval,
		"notify", cfg.NowPlaying.Notify,
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var reg *prometheus.Registry
	if cfg.Server.MetricsEnabled() {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.Register(reg)
	}

	reader := status.NewReader(cfg.NowPlaying.Path)
	if _, err := reader.ModTime(); err != nil {
		// Not fatal: the writer may create the file later.
		slog.Warn("now playing file not readable yet", "err", err)
	}

	// Optional fsnotify wake-ups; loops still poll on their own interval.
	var notifier *watch.Notifier
	if cfg.NowPlaying.Notify {
		notifier = watch.NewNotifier()
		w, err := watch.New(cfg.NowPlaying.Path, notifier)
		if err != nil {
			slog.Error("file watch disabled", "err", err)
			notifier = nil
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					slog.Error("file watcher stopped", "err", err)
				}
			}()
		}
	}

	hub := ws.New(reader, ws.Options{
		Interval:       cfg.NowPlaying.PollInterval,
		Notifier:       notifier,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	go hub.Run(ctx)

	var gatherer prometheus.Gatherer
	if reg != nil {
		gatherer = reg
	}
	handler := router.New(cfg.Server, api.New(reader, hub, gatherer), hub, reg)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("nowplaying-server shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck

	// WebSocket connections are hijacked, so Shutdown above does not wait for them.
	if err := hub.Shutdown(shutdownCtx); err != nil {
		slog.Warn("ws sessions still open at exit", "err", err, "clients", hub.Count())
	}
}
