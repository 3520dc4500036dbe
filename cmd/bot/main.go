package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	telegramAdapter "github.com/MihanyaZaretsky/nimble3tgbot/internal/adapter/telegram"
	"github.com/MihanyaZaretsky/nimble3tgbot/internal/adapter/web"
	"github.com/MihanyaZaretsky/nimble3tgbot/internal/config"
	"github.com/MihanyaZaretsky/nimble3tgbot/internal/infra/memory"
	sentryutil "github.com/MihanyaZaretsky/nimble3tgbot/internal/infra/sentry"
	sqliteRepo "github.com/MihanyaZaretsky/nimble3tgbot/internal/infra/sqlite"
	"github.com/MihanyaZaretsky/nimble3tgbot/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("config error", "error", err)
		os.Exit(1)
	}

	sentryutil.Init(cfg.SentryDSN, cfg.SentryEnvironment, logger)
	defer sentryutil.Flush()

	if err := run(cfg, logger); err != nil {
		logger.Error("bot stopped with error", "error", err)
		sentryutil.Flush()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.LogLevel <= slog.LevelDebug
	if !bot.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("authorized", "username", bot.Self.UserName)

	var funnelRepo usecase.FunnelRepository = memory.NewFunnelRepo()
	if cfg.StatsDSN != "" {
		repo, err := sqliteRepo.NewFunnelRepo(cfg.StatsDSN)
		if err != nil {
			return err
		}
		defer repo.Close()
		funnelRepo = repo
	}

	reporter := sentryutil.Reporter{}
	handler := telegramAdapter.NewHandler(bot, usecase.NewRouletteGreeter(cfg.WebAppURL), logger,
		telegramAdapter.WithFunnel(usecase.NewFunnelUsecase(funnelRepo)),
		telegramAdapter.WithAdmins(cfg.AdminIDs),
		telegramAdapter.WithReporter(reporter),
		telegramAdapter.WithPollTimeout(cfg.PollTimeout),
	)

	var webOpts []web.Option
	if cfg.WebhookMode() {
		webOpts = append(webOpts, web.WithWebhook(telegramAdapter.WebhookRoute(cfg.WebhookSecret), handler.Webhook()))
	}
	server := web.New(cfg.Port, logger, reporter, webOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx) })
	if cfg.WebhookMode() {
		if err := handler.RegisterWebhook(telegramAdapter.WebhookEndpoint(cfg.WebhookURL, cfg.WebhookSecret)); err != nil {
			stop()
			return errors.Join(err, g.Wait())
		}
	} else {
		g.Go(func() error { return handler.Run(ctx) })
	}

	logger.Info("Nimble Roulette bot started", "web_app_url", cfg.WebAppURL, "page", "http://localhost:"+cfg.Port, "webhook", cfg.WebhookMode())
	logger.Info("send /start to begin")

	err = g.Wait()
	logger.Info("shutting down")
	return err
}
