// Command feedgen generates the feed once and writes it to disk,
// optionally dumping the fetched rows to CSV for inspection.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cian-feed/config"
	"cian-feed/feed"
	"cian-feed/models"
	"cian-feed/storage"
	"cian-feed/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

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

	ctx := context.Background()

	rows, err := source.FetchListings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("listing fetch failed")
		os.Exit(1)
	}

	if cfg.CSVDumpPath != "" {
		if err := dumpCSV(cfg.CSVDumpPath, rows); err != nil {
			logger.Error().Err(err).Msg("CSV dump failed")
		} else {
			logger.Info().Str("path", cfg.CSVDumpPath).Msg("raw rows dumped")
		}
	}

	listings := make([]*models.ListingRecord, 0, len(rows))
	for _, row := range rows {
		if row.IsPublished() {
			listings = append(listings, row)
		}
	}

	if err := storage.AttachAgents(ctx, source, listings); err != nil {
		logger.Error().Err(err).Msg("agent fetch failed")
		os.Exit(1)
	}

	doc := feed.NewBuilder(vocab).Build(listings)
	body, err := feed.Serialize(doc)
	if err != nil {
		logger.Error().Err(err).Msg("feed serialization failed")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FeedOutputPath), 0755); err != nil {
		logger.Error().Err(err).Msg("failed to create output dir")
		os.Exit(1)
	}
	if err := os.WriteFile(cfg.FeedOutputPath, body, 0644); err != nil {
		logger.Error().Err(err).Msg("failed to write feed")
		os.Exit(1)
	}

	report := feed.Summarize(doc, listings)
	logger.Info().
		Int("fetched", len(rows)).
		Int("published", len(listings)).
		Stringer("report", report).
		Msg("feed written")

	fmt.Printf("  Done. Feed → %s (%d bytes, %d objects)\n\n",
		cfg.FeedOutputPath, len(body), report.TotalObjects)
}

func dumpCSV(path string, rows []*models.ListingRecord) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.WriteListings(rows)
}
