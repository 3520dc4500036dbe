// Command probe checks a bot token end to end: it drops any webhook,
// long-polls and answers /start with a plain test reply.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	telegramAdapter "github.com/MihanyaZaretsky/nimble3tgbot/internal/adapter/telegram"
	"github.com/MihanyaZaretsky/nimble3tgbot/internal/config"
	"github.com/MihanyaZaretsky/nimble3tgbot/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	// only polls, so webhook settings do not matter here
	if err != nil && !errors.Is(err, config.ErrBadWebhookSecret) {
		logger.Error("token not found", "error", err)
		os.Exit(1)
	}
	logger.Info("token found", "prefix", cfg.BotToken[:min(10, len(cfg.BotToken))]+"...")

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("bot init failed", "error", err)
		os.Exit(1)
	}
	logger.Info("authorized", "username", bot.Self.UserName)

	handler := telegramAdapter.NewHandler(bot, usecase.ProbeGreeter{}, logger,
		telegramAdapter.WithPollTimeout(cfg.PollTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("probe running, send /start")
	if err := handler.Run(ctx); err != nil {
		logger.Error("probe stopped", "error", err)
		os.Exit(1)
	}
}
