package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wagus-labs/agent-portal/backend"
	"github.com/wagus-labs/agent-portal/backend/config"
	"github.com/wagus-labs/agent-portal/backend/handlers"
	"github.com/wagus-labs/agent-portal/backend/middleware"
	"github.com/wagus-labs/agent-portal/portal"
	"github.com/wagus-labs/agent-portal/portal/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	persistence := flag.String("persistence", "", "override economy.persistence (memory, postgres, mongo, redis)")
	debug := flag.Bool("debug", false, "enable debug mode")
	flag.Parse()

	cfg := portal.DefaultConfig()
	if _, err := os.Stat(*path); err == nil {
		loaded, err := portal.LoadConfig(*path)
		if err != nil {
			slog.Error("Failed to load configuration", slog.Any("error", err))
			os.Exit(-1)
		}
		cfg = *loaded
	}
	if *persistence != "" {
		cfg.Economy.Persistence = *persistence
		if err := cfg.Validate(); err != nil {
			slog.Error("Invalid persistence override", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	slog.SetDefault(logger.New("WAGUS", cfg.Log.Format, cfg.Log.Level, cfg.Log.AddSource))

	logger.LogSystem("Starting WAGUS agent portal",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("persistence", cfg.Economy.Persistence))

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	p := portal.New(cfg, version, commit)
	if err := p.Setup(setupCtx); err != nil {
		setupCancel()
		logger.LogError("Failed to set up portal", err)
		os.Exit(-1)
	}
	setupCancel()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Start(ctx); err != nil {
		logger.LogError("Failed to start portal", err)
		os.Exit(-1)
	}

	limiter := middleware.NewRateLimiter(cfg.Web.RefreshRate, cfg.Web.RefreshBurst)
	limiter.StartCleanup(ctx, time.Minute)

	app := backend.NewApp(&handlers.WebApp{
		Config:    config.NewWebAppConfig(&cfg, *debug),
		DB:        p.DB,
		Engine:    p.Engine,
		Store:     p.Store,
		Analyzer:  p.Analyzer,
		Scheduler: p.Scheduler,
		Spot:      p.Spot,
		Metrics:   p.Metrics,
		Version:   version,
		Commit:    commit,
	}, limiter)

	if err := backend.Serve(ctx, app, cfg.Web.Address()); err != nil {
		slog.Error("API server error",
			slog.String("type", "api"),
			slog.Any("error", err))
	}

	logger.LogSystem("Shutting down portal...")
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer closeCancel()
	p.Close(closeCtx)
	logger.LogSystem("Portal shutdown complete")
}
