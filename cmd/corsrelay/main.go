package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"hrportal/internal/platform/config"
	"hrportal/internal/relay"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env load failed", "err", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()
	if cfg.RelayTarget == "" {
		log.Fatal("RELAY_TARGET is required")
	}

	handler, err := relay.New(cfg.RelayTarget)
	if err != nil {
		log.Fatalf("invalid relay target: %v", err)
	}

	log.Printf("cors relay listening on %s, forwarding to %s", cfg.RelayAddr, cfg.RelayTarget)
	if err := http.ListenAndServe(cfg.RelayAddr, handler); err != nil {
		log.Fatalf("relay failed: %v", err)
	}
}
