package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mrhacklx/Terabis/internal/app/config"
	"github.com/Mrhacklx/Terabis/internal/app/logger"
	"github.com/Mrhacklx/Terabis/internal/app/shortener"
	"github.com/Mrhacklx/Terabis/internal/app/storage"
	"github.com/Mrhacklx/Terabis/internal/app/telegram"
	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.NewConfig()
	logger.Init()

	if cfg.BotToken == "" {
		logger.GetLogger().Fatal().Msg("BOT_TOKEN is required")
	}
	if cfg.WebhookURL == "" {
		logger.GetLogger().Fatal().Msg("WEBHOOK_URL is required")
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

	processor := telegram.NewProcessor(dispatcher, bot, cfg.Workers)
	processor.Run(ctx)

	handler := telegram.NewWebhookHandler(processor, cfg.WebhookSecret)
	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: handler,
	}

	go func() {
		logger.Info().Str("address", cfg.ServerAddress).Msg("webhook server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatal().Err(err).Msg("server failed")
		}
	}()

	if err := bot.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("set webhook failed")
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	processor.Stop()
	logger.Info().Msg("bot stopped")
}
