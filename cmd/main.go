package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/neurobridge-milestones/internal/app"
	"github.com/yungbote/neurobridge-milestones/internal/config"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	loader, err := config.NewLoader(os.Getenv("MILESTONES_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init config loader: %v\n", err)
		os.Exit(1)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("App init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Close(closeCtx)
	}()

	log.Info("Milestone service starting", "env", cfg.App.Env, "addr", cfg.HTTP.Addr, "jobs_backend", cfg.Jobs.Backend)
	if err := a.Run(ctx); err != nil {
		log.Error("Milestone service stopped with error", "error", err)
		return
	}
	log.Info("Milestone service stopped")
}
