// Package main is the entry point for the budget CLI client.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/shaunstone0/stone-budget/internal/client/cli"
)

func main() {
	server := flag.String("server", envOr("BUDGET_SERVER", "http://localhost:8080"), "server base URL")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	app, err := cli.NewApp(*server, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	os.Exit(app.Run(context.Background(), flag.Args()))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
