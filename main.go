package main

import (
	"net/http"
	"os"
	"time"

	"cian-feed/config"
	"cian-feed/feed"
	"cian-feed/server"
	"cian-feed/storage"
	"cian-feed/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info().
		Str("source", cfg.Source).
		Str("port", cfg.Port).
		Msg("=== CIAN feed service starting ===")

	vocab := feed.MustLoadVocabulary()

	retry := utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Duration(cfg.RetryBaseMs) * time.Millisecond,
		Logger:      logger,
	}

	var source storage.ListingSource
	var err error
	switch cfg.Source {
	case "postgres":
		source, err = storage.NewPostgresSource(cfg.DSN())
	default:
		source, err = storage.NewSupabaseSource(cfg.SupabaseURL, cfg.SupabaseKey, retry, logger)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize listing source")
		os.Exit(1)
	}
	defer source.Close()

	srv := server.New(source, vocab, logger)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("serving /feed.xml, /health, /api/count")
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
