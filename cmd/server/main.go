package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docbrief/internal/api"
	"github.com/dgallion1/docbrief/internal/app"
	"github.com/dgallion1/docbrief/internal/config"
)

func main() {
	// A missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := app.NewLogger(os.Stdout, cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orch := a.Orchestrator()
	orch.Start(ctx)
	defer orch.Stop()

	srv := api.NewServer(orch, api.Options{Stats: a.Stats, Model: a.Model}, log, cfg)

	log.Info("starting docbrief", "port", cfg.Port, "extractor", cfg.Extractor)
	if err := api.ListenAndServe(ctx, ":"+cfg.Port, srv, cfg.RunTimeout+30*time.Second, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
