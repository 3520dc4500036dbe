package config

import (
	"errors"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingToken is returned by Load when neither BOT_TOKEN nor
// TELEGRAM_BOT_TOKEN is set.
var ErrMissingToken = errors.New("config: BOT_TOKEN is not set")

// ErrBadWebhookSecret is returned by Load when WEBHOOK_URL is set but
// WEBHOOK_SECRET is empty or not usable as a URL path segment.
var ErrBadWebhookSecret = errors.New("config: WEBHOOK_SECRET must be set to 1-256 chars of A-Z, a-z, 0-9, _ or - when WEBHOOK_URL is set")

var webhookSecretRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

const DefaultWebAppURL = "https://example.com"

type Config struct {
	BotToken string

	// Web App
	WebAppURL string
	Port      string

	// Updates
	WebhookURL    string // public base URL, empty means long polling
	WebhookSecret string
	PollTimeout   time.Duration

	AdminIDs map[int64]struct{}
	StatsDSN string

	LogLevel slog.Level

	SentryDSN         string
	SentryEnvironment string
}

// Load reads .env (if present) and builds Config from the environment.
func Load() (Config, error) {
	// .env is optional, the environment always wins
	_ = godotenv.Load()

	cfg := Config{
		BotToken:          firstNonEmpty(os.Getenv("BOT_TOKEN"), os.Getenv("TELEGRAM_BOT_TOKEN")),
		WebAppURL:         envOr("WEBAPP_URL", DefaultWebAppURL),
		Port:              envOr("PORT", "3000"),
		WebhookURL:        strings.TrimSpace(os.Getenv("WEBHOOK_URL")),
		WebhookSecret:     strings.TrimSpace(os.Getenv("WEBHOOK_SECRET")),
		PollTimeout:       envDuration("POLL_TIMEOUT", 30*time.Second),
		AdminIDs:          ParseChatIDs(os.Getenv("ADMIN_CHAT_IDS")),
		StatsDSN:          strings.TrimSpace(os.Getenv("STATS_SQLITE_DSN")),
		LogLevel:          envLevel("LOG_LEVEL", slog.LevelInfo),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: envOr("SENTRY_ENVIRONMENT", "production"),
	}
	if cfg.BotToken == "" {
		return cfg, ErrMissingToken
	}
	if cfg.WebhookMode() && !webhookSecretRe.MatchString(cfg.WebhookSecret) {
		return cfg, ErrBadWebhookSecret
	}
	return cfg, nil
}

// WebhookMode reports whether updates are pushed by Telegram instead of polled.
func (c Config) WebhookMode() bool { return c.WebhookURL != "" }

// ParseChatIDs splits a comma-separated list of chat ids, skipping junk.
func ParseChatIDs(raw string) map[int64]struct{} {
	ids := map[int64]struct{}{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ids
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
