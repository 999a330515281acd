package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"symptom-checker/internal/config"
	"symptom-checker/internal/logging"
	"symptom-checker/internal/server"
)

func main() {
	cfg, err := config.Load()
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("Server failed")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}
