package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tavolaapp/tavola-admin/internal/mockserver"
)

func main() {
	var (
		addr     = flag.String("addr", ":8080", "listen address")
		dataDir  = flag.String("data", defaultDataDir(), "directory for the database and uploads")
		seed     = flag.Bool("seed", true, "seed an admin account and sample data on first run")
		logLevel = flag.String("log-level", envOr("MOCKD_LOG_LEVEL", "info"), "debug, info, warn, or error")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}

	storage, err := mockserver.OpenStorage(filepath.Join(*dataDir, "tavola.db"))
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	if *seed {
		if err := storage.Seed(context.Background()); err != nil {
			log.Fatalf("seed: %v", err)
		}
		logger.Info("seeded", "admin", "admin@tavola.local", "password", "admin")
	}

	srv := mockserver.NewServer(*addr, storage, filepath.Join(*dataDir, "uploads"), logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func defaultDataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "tavola-mockd")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
