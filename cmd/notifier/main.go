// Command notifier posts the marketplace import status to Telegram.
// Intended to run from cron after each feed check cycle.
package main

import (
	"context"
	"os"
	"time"

	"cian-feed/config"
	"cian-feed/notify"
	"cian-feed/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	retry := utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Duration(cfg.RetryBaseMs) * time.Millisecond,
		Logger:      logger,
	}

	notifier, err := notify.New(notify.Config{
		APIBaseURL:  cfg.CianAPIBaseURL,
		APIToken:    cfg.CianAPIToken,
		PageSize:    cfg.CianImagesPage,
		Timeout:     time.Duration(cfg.CianTimeoutSec) * time.Second,
		BotToken:    cfg.TelegramBotToken,
		ChatID:      cfg.TelegramChatID,
		ThreadID:    cfg.TelegramThreadID,
		ErrorUserID: cfg.TelegramErrorUserID,
	}, retry, logger)
	if err != nil {
		logger.Error().Err(err).Msg("notifier configuration invalid")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := notifier.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("import status report failed")
		os.Exit(1)
	}
	logger.Info().Msg("import status report sent")
}
