package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mrhacklx/Terabis/internal/app/config"
	"github.com/Mrhacklx/Terabis/internal/app/logger"
	"github.com/Mrhacklx/Terabis/internal/app/shortener"
	"github.com/Mrhacklx/Terabis/internal/app/storage"
	"github.com/Mrhacklx/Terabis/internal/app/telegram"
	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

func main() {
	cfg := config.NewConfig()
	logger.Init()

	if cfg.BotToken == "" {
		logger.GetLogger().Fatal().Msg("BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.New(ctx, cfg.DatabaseDSN, cfg.StorageFilePath)
	if err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("storage init failed")
	}
	defer closeStore()

	api := shortener.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	dispatcher := usecase.NewDispatcher(store, api, logger.GetLogger())
	bot := telegram.NewClient(cfg.BotToken, cfg.RequestTimeout)

	// Снимаем вебхук, иначе getUpdates вернет ошибку
	if err := bot.DeleteWebhook(ctx); err != nil {
		logger.Error().Err(err).Msg("delete webhook failed")
	}

	processor := telegram.NewProcessor(dispatcher, bot, cfg.Workers)
	processor.Run(ctx)

	poller := telegram.NewPoller(bot, processor, cfg.PollTimeout)

	logger.Info().Int("workers", cfg.Workers).Msg("bot started in long poll mode")

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("poller stopped with error")
	}

	processor.Stop()
	logger.Info().Msg("bot stopped")
}
