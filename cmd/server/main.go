// Package main is the entry point for the WhiskerBook API server.
//
// main stays minimal: read configuration, build the logger, hand both to
// the server package. Everything else lives under internal/.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/whiskerbook/internal/config"
	"github.com/sakif/whiskerbook/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// === 3. OPEN THE STORE AND BUILD THE SERVER ===
	// server.New installs the schema constraints before returning; a failure
	// there stops the process before anything listens.
	srv, err := server.New(context.Background(), server.Config{
		Port:               cfg.Port,
		DBPath:             cfg.DBPath,
		ServiceName:        cfg.ServiceName,
		StaticDir:          cfg.StaticDir,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. SERVE ===
	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
