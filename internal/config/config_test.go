package config

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BOT_TOKEN", "TELEGRAM_BOT_TOKEN", "WEBAPP_URL", "PORT", "WEBHOOK_URL", "WEBHOOK_SECRET",
		"POLL_TIMEOUT", "ADMIN_CHAT_IDS", "STATS_SQLITE_DSN", "LOG_LEVEL",
		"SENTRY_DSN", "SENTRY_ENVIRONMENT",
	} {
		t.Setenv(k, "")
	}
}

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_MissingToken(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	_, err := Load()
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WebAppURL != DefaultWebAppURL {
		t.Errorf("WebAppURL = %q", cfg.WebAppURL)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.PollTimeout != 30*time.Second {
		t.Errorf("PollTimeout = %v", cfg.PollTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.WebhookMode() {
		t.Error("webhook mode should be off by default")
	}
}

func TestLoad_FallbackTokenAndOverrides(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "42:xyz")
	t.Setenv("WEBAPP_URL", "https://roulette.example.org")
	t.Setenv("PORT", "8081")
	t.Setenv("WEBHOOK_URL", "https://bot.example.org")
	t.Setenv("WEBHOOK_SECRET", "Zx9_-q")
	t.Setenv("POLL_TIMEOUT", "not-a-duration")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotToken != "42:xyz" {
		t.Errorf("BotToken = %q", cfg.BotToken)
	}
	if cfg.WebAppURL != "https://roulette.example.org" || cfg.Port != "8081" {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if !cfg.WebhookMode() || cfg.WebhookSecret != "Zx9_-q" {
		t.Errorf("webhook mode with secret expected, got %q %q", cfg.WebhookURL, cfg.WebhookSecret)
	}
	if cfg.PollTimeout != 30*time.Second {
		t.Errorf("bad POLL_TIMEOUT should fall back, got %v", cfg.PollTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoad_WebhookNeedsUsableSecret(t *testing.T) {
	for _, secret := range []string{"", "has/slash", "with space", "ключ"} {
		clearEnv(t)
		chdir(t, t.TempDir())
		t.Setenv("BOT_TOKEN", "123:abc")
		t.Setenv("WEBHOOK_URL", "https://bot.example.org")
		t.Setenv("WEBHOOK_SECRET", secret)

		if _, err := Load(); !errors.Is(err, ErrBadWebhookSecret) {
			t.Errorf("secret %q: expected ErrBadWebhookSecret, got %v", secret, err)
		}
	}
}

func TestParseChatIDs(t *testing.T) {
	ids := ParseChatIDs(" 1, 2 ,,abc, -100500 ")
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d: %v", len(ids), ids)
	}
	for _, id := range []int64{1, 2, -100500} {
		if _, ok := ids[id]; !ok {
			t.Errorf("missing %d", id)
		}
	}
	if len(ParseChatIDs("")) != 0 {
		t.Error("empty input should give no ids")
	}
}
