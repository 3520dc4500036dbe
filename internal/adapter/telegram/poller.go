package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var pollRetryDelay = 3 * time.Second

type pollResult struct {
	updates []update
	err     error
}

// Run long-polls getUpdates and dispatches updates one by one until ctx is done.
// A webhook left by an earlier run is removed first, Telegram refuses
// getUpdates with 409 while one is set.
func (h *Handler) Run(ctx context.Context) error {
	if err := h.RemoveWebhook(); err != nil {
		h.logger.Warn("could not remove webhook before polling", "error", err)
		if h.reporter != nil {
			h.reporter.CaptureError(err, map[string]string{"op": "deleteWebhook"})
		}
	}
	h.logger.Info("long polling started", "timeout", h.pollTimeout)
	offset := 0
	for {
		updates, err := h.fetch(ctx, offset)
		if ctx.Err() != nil {
			h.logger.Info("long polling stopped")
			return nil
		}
		if err != nil {
			h.pollError(err)
			select {
			case <-ctx.Done():
				h.logger.Info("long polling stopped")
				return nil
			case <-time.After(pollRetryDelay):
			}
			continue
		}
		for i := range updates {
			if updates[i].UpdateID >= offset {
				offset = updates[i].UpdateID + 1
			}
			h.handle(&updates[i])
		}
	}
}

// fetch returns as soon as ctx is cancelled, leaving the in-flight request behind.
func (h *Handler) fetch(ctx context.Context, offset int) ([]update, error) {
	ch := make(chan pollResult, 1)
	go func() {
		u, err := h.getUpdates(offset)
		ch <- pollResult{updates: u, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.updates, r.err
	}
}

func (h *Handler) getUpdates(offset int) ([]update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = int(h.pollTimeout / time.Second)
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	resp, err := h.bot.Request(cfg)
	if err != nil {
		return nil, err
	}
	var updates []update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

func (h *Handler) pollError(err error) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
		h.logger.Error("polling conflict, another instance or a webhook is active", "error", err)
	} else {
		h.logger.Error("polling error", "error", err)
	}
	if h.reporter != nil {
		h.reporter.CaptureError(err, map[string]string{"op": "getUpdates"})
	}
}
