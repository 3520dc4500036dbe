package telegram

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookPath prefixes the webhook route; the secret is the last path segment.
const WebhookPath = "/telegram/webhook"

// WebhookRoute is the only path that accepts pushed updates. The client library
// cannot set secret_token, so the secret lives in the URL Telegram is told about.
func WebhookRoute(secret string) string {
	return WebhookPath + "/" + secret
}

// WebhookEndpoint joins the public base URL with WebhookRoute.
func WebhookEndpoint(baseURL, secret string) string {
	return strings.TrimRight(baseURL, "/") + WebhookRoute(secret)
}

// RegisterWebhook points Telegram at url; getUpdates stops working until it is removed.
func (h *Handler) RegisterWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := h.bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	h.logger.Info("webhook registered", "url", url)
	return nil
}

// RemoveWebhook switches the bot back to getUpdates.
func (h *Handler) RemoveWebhook() error {
	if _, err := h.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// Webhook decodes a pushed update and dispatches it like a polled one.
func (h *Handler) Webhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var u update
		if err := c.ShouldBindJSON(&u); err != nil {
			h.logger.Warn("bad webhook payload", "error", err)
			c.Status(http.StatusBadRequest)
			return
		}
		h.handle(&u)
		c.Status(http.StatusOK)
	}
}
