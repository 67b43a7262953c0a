package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Placement Reminder specifics
	Telegram       TelegramConfig
	Gmail          GmailConfig
	GoogleCalendar GoogleCalendarConfig
	Ledger         LedgerConfig
	Reminder       ReminderConfig

	// Webhooks
	Webhook WebhookConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type TelegramConfig struct {
	BotToken   string
	ChatID     int64
	WebhookURL string
}

type GmailConfig struct {
	CredentialsPath string
	TokenPath       string
	Query           string
	MaxFetch        int64
}

type GoogleCalendarConfig struct {
	CredentialsPath string
	TokenPath       string
	CalendarID      string
}

type LedgerConfig struct {
	ProcessedPath string
	PendingPath   string
}

type ReminderConfig struct {
	Timezone     string
	PollInterval time.Duration // 0 disables background polling
}

type WebhookConfig struct {
	Secret          string
	RateLimitPerMin int
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Telegram
	cfg.Telegram.BotToken = viper.GetString("telegram.bot_token")
	cfg.Telegram.ChatID = viper.GetInt64("telegram.chat_id")
	cfg.Telegram.WebhookURL = viper.GetString("telegram.webhook_url")
	if tgToken := viper.GetString("telegram_bot_token"); tgToken != "" {
		cfg.Telegram.BotToken = tgToken
	}
	if tgChat := viper.GetInt64("telegram_chat_id"); tgChat != 0 {
		cfg.Telegram.ChatID = tgChat
	}

	// Gmail
	cfg.Gmail.CredentialsPath = viper.GetString("gmail.credentials_path")
	cfg.Gmail.TokenPath = viper.GetString("gmail.token_path")
	cfg.Gmail.Query = viper.GetString("gmail.query")
	cfg.Gmail.MaxFetch = viper.GetInt64("gmail.max_fetch")

	// Google Calendar
	cfg.GoogleCalendar.CredentialsPath = viper.GetString("google_calendar.credentials_path")
	cfg.GoogleCalendar.TokenPath = viper.GetString("google_calendar.token_path")
	cfg.GoogleCalendar.CalendarID = viper.GetString("google_calendar.calendar_id")
	if googleCreds := viper.GetString("google_credentials"); googleCreds != "" {
		cfg.Gmail.CredentialsPath = googleCreds
		cfg.GoogleCalendar.CredentialsPath = googleCreds
	}

	// Ledger
	cfg.Ledger.ProcessedPath = viper.GetString("ledger.processed_path")
	cfg.Ledger.PendingPath = viper.GetString("ledger.pending_path")

	// Reminder
	cfg.Reminder.Timezone = viper.GetString("reminder.timezone")
	cfg.Reminder.PollInterval = viper.GetDuration("reminder.poll_interval")

	// Webhooks
	cfg.Webhook.Secret = viper.GetString("webhook.secret")
	if webhookSecret := viper.GetString("webhook_secret"); webhookSecret != "" {
		cfg.Webhook.Secret = webhookSecret
	}
	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("gmail.credentials_path", "credentials.json")
	viper.SetDefault("gmail.token_path", "token.json")
	viper.SetDefault("gmail.query", "placement OR interview OR recruitment newer_than:14d")
	viper.SetDefault("gmail.max_fetch", 10)

	viper.SetDefault("google_calendar.credentials_path", "credentials.json")
	viper.SetDefault("google_calendar.token_path", "token.json")
	viper.SetDefault("google_calendar.calendar_id", "primary")

	viper.SetDefault("ledger.processed_path", "processed_ids.json")
	viper.SetDefault("ledger.pending_path", "pending_events.json")

	viper.SetDefault("reminder.timezone", "Asia/Kolkata")
	viper.SetDefault("reminder.poll_interval", "0s")

	viper.SetDefault("webhook.rate_limit_per_min", 60)
}
