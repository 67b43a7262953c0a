package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placement-reminder/config"
	_ "placement-reminder/docs" // Swagger docs
	"placement-reminder/internal/event"
	tgDelivery "placement-reminder/internal/event/delivery/telegram"
	ledgerFile "placement-reminder/internal/event/repository/file"
	"placement-reminder/internal/event/usecase"
	"placement-reminder/internal/httpserver"
	"placement-reminder/internal/webhook"
	"placement-reminder/pkg/extract"
	"placement-reminder/pkg/gcalendar"
	"placement-reminder/pkg/gmail"
	"placement-reminder/pkg/log"
	"placement-reminder/pkg/telegram"
)

// @title       Placement Reminder API
// @description Inbox-to-calendar approval pipeline: Gmail ingestion, datetime extraction, Telegram approval, Google Calendar.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Placement Reminder...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	if cfg.Telegram.BotToken == "" {
		logger.Error(ctx, "TELEGRAM_BOT_TOKEN is required")
		return
	}

	// 3. Clients
	telegramBot := telegram.NewBot(cfg.Telegram.BotToken)

	mailClient, err := gmail.NewClient(ctx, cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath)
	if err != nil {
		logger.Errorf(ctx, "Gmail not available: %v", err)
		logger.Error(ctx, "→ Run `go run scripts/gcal-auth/main.go` to generate token.json")
		return
	}

	calendarClient, err := gcalendar.NewClientFromCredentialsFile(ctx, cfg.GoogleCalendar.CredentialsPath, cfg.GoogleCalendar.TokenPath)
	if err != nil {
		logger.Errorf(ctx, "Google Calendar not available: %v", err)
		return
	}

	extractor, err := extract.New(cfg.Reminder.Timezone)
	if err != nil {
		logger.Warnf(ctx, "Invalid timezone %q, falling back to UTC: %v", cfg.Reminder.Timezone, err)
		extractor, _ = extract.New("UTC")
	}

	// 4. Event domain
	ledger := ledgerFile.New(logger, cfg.Ledger.ProcessedPath, cfg.Ledger.PendingPath)

	eventUC := usecase.New(logger, mailClient, calendarClient, telegramBot, ledger, extractor, usecase.Config{
		Query:      cfg.Gmail.Query,
		MaxFetch:   cfg.Gmail.MaxFetch,
		ChatID:     cfg.Telegram.ChatID,
		CalendarID: cfg.GoogleCalendar.CalendarID,
		Timezone:   cfg.Reminder.Timezone,
	})

	telegramHandler := tgDelivery.New(logger, eventUC, telegramBot)

	// 5. Webhook registration
	if cfg.Telegram.WebhookURL != "" {
		if whErr := telegramBot.SetWebhook(cfg.Telegram.WebhookURL, cfg.Webhook.Secret); whErr != nil {
			logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
		} else {
			logger.Infof(ctx, "Telegram webhook registered at %s", cfg.Telegram.WebhookURL)
		}
	}

	// 6. Background polling (optional)
	if cfg.Reminder.PollInterval > 0 {
		go pollInbox(ctx, logger, eventUC, cfg.Reminder.PollInterval)
	}

	// 7. HTTP Server
	security := webhook.NewSecurityValidator(webhook.SecurityConfig{
		SecretToken:     cfg.Webhook.Secret,
		RateLimitPerMin: cfg.Webhook.RateLimitPerMin,
	})

	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		TelegramHandler: telegramHandler,
		Security:        security,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 8. Run
	if err := httpServer.Run(); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}

// pollInbox runs ingestion on a fixed interval so new mails surface without
// a manual /fetch.
func pollInbox(ctx context.Context, logger log.Logger, uc event.UseCase, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Inbox poller stopping")
			return
		case <-ticker.C:
			out, err := uc.Ingest(ctx)
			if err != nil {
				logger.Errorf(ctx, "Inbox poll failed: %v", err)
				continue
			}
			if len(out.Staged) > 0 {
				logger.Infof(ctx, "Inbox poll staged %d event(s)", len(out.Staged))
			}
		}
	}
}
