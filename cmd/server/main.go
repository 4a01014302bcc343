// Package main is the entry point for the studio content server.
//
// main only reads configuration, builds the logger and the store, and hands
// them to internal/server. Everything else lives in internal packages.
//
// Usage:
//
//	server -config studio.yaml -env .env
//
// With no flags the defaults apply: SQLite at data/studio.db, port 8080, and
// JWT_SECRET read from the environment or .env.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ijwihub/studio-cms/internal/config"
	"github.com/ijwihub/studio-cms/internal/server"
)

func main() {
	configFile := flag.String("config", os.Getenv("STUDIO_CONFIG"), "path to a YAML config file")
	envFile := flag.String("env", ".env", "path to a .env file (skipped if missing)")
	flag.Parse()

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	cfg, err := config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if cfg.Auth.GuardBypass {
		logger.Warn("auth.guard_bypass is set; the admin panel is open to anyone")
	}

	store, err := server.OpenStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("creating server: %w", err)
	}

	// Ctrl+C or SIGTERM cancels ctx and Start shuts down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
