package telegram

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/MihanyaZaretsky/nimble3tgbot/internal/domain"
	"github.com/MihanyaZaretsky/nimble3tgbot/internal/usecase"
)

// Client is the subset of *tgbotapi.BotAPI the handler needs.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ErrorReporter receives errors that are logged and otherwise dropped.
type ErrorReporter interface {
	CaptureError(err error, tags map[string]string)
}

type event string

const (
	eventStart      event = "start"
	eventStats      event = "stats"
	eventWebAppData event = "webapp_data"
	eventMessage    event = "message"
	eventCallback   event = "callback_query"
)

type Handler struct {
	bot         Client
	greeter     usecase.Greeter
	funnel      *usecase.FunnelUsecase
	adminIDs    map[int64]struct{}
	reporter    ErrorReporter
	logger      *slog.Logger
	pollTimeout time.Duration

	routes map[event]func(u *update)
}

type Option func(*Handler)

func WithFunnel(f *usecase.FunnelUsecase) Option { return func(h *Handler) { h.funnel = f } }

func WithAdmins(ids map[int64]struct{}) Option { return func(h *Handler) { h.adminIDs = ids } }

func WithReporter(r ErrorReporter) Option { return func(h *Handler) { h.reporter = r } }

func WithPollTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pollTimeout = d
		}
	}
}

func NewHandler(bot Client, greeter usecase.Greeter, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		bot:         bot,
		greeter:     greeter,
		adminIDs:    map[int64]struct{}{},
		logger:      logger,
		pollTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.routes = map[event]func(u *update){
		eventStart:      h.onStart,
		eventStats:      h.onStats,
		eventWebAppData: h.onWebAppData,
		eventMessage:    h.onMessage,
		eventCallback:   h.onCallback,
	}
	return h
}

func classify(u *update) (event, bool) {
	switch {
	case u.CallbackQuery != nil:
		return eventCallback, true
	case u.Message == nil:
		return "", false
	case u.Message.WebAppData != nil:
		return eventWebAppData, true
	case u.Message.IsCommand() && u.Message.Command() == "start":
		return eventStart, true
	case u.Message.IsCommand() && u.Message.Command() == "stats":
		return eventStats, true
	default:
		return eventMessage, true
	}
}

func (h *Handler) handle(u *update) {
	if u.Message != nil {
		h.logger.Debug("message received", "chat_id", chatIDOf(u.Message), "text", u.Message.Text)
	}
	ev, ok := classify(u)
	if !ok {
		h.logger.Debug("update ignored", "update_id", u.UpdateID)
		return
	}
	h.routes[ev](u)
}

func (h *Handler) onStart(u *update) {
	in := u.Message.inbound()
	h.logger.Info("/start received", "chat_id", in.ChatID, "from", in.SenderName)
	h.track(in.ChatID, usecase.StageStart)
	if err := h.SendOutbound(h.greeter.Welcome(in)); err != nil {
		h.fail("send welcome failed", err, in.ChatID, "sendMessage")
		return
	}
	h.logger.Info("welcome sent", "chat_id", in.ChatID)
}

func (h *Handler) onMessage(u *update) {
	// nothing to answer, the debug line in handle is enough
}

func (h *Handler) onCallback(u *update) {
	cq := u.CallbackQuery
	var chatID int64
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
	}
	h.logger.Debug("callback received", "chat_id", chatID, "data", cq.Data)
	h.track(chatID, usecase.StageCallback)
	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		h.fail("answer callback failed", err, chatID, "answerCallbackQuery")
	}
}

func (h *Handler) onWebAppData(u *update) {
	in := u.Message.inbound()
	h.logger.Info("web app data received", "chat_id", in.ChatID, "data", in.WebApp.Data, "button_text", in.WebApp.ButtonText)
	h.track(in.ChatID, usecase.StageWebAppData)
	if err := h.SendOutbound(h.greeter.Acknowledge(in)); err != nil {
		h.fail("send web app ack failed", err, in.ChatID, "sendMessage")
	}
}

func (h *Handler) onStats(u *update) {
	chatID := chatIDOf(u.Message)
	if !h.isAdmin(chatID) {
		h.logger.Warn("stats denied", "chat_id", chatID)
		h.sendText(chatID, "Доступ запрещен")
		return
	}
	if h.funnel == nil {
		h.sendText(chatID, "Воронка недоступна")
		return
	}
	labels, values, err := h.funnel.GraphData()
	if err != nil {
		h.fail("funnel read failed", err, chatID, "funnel")
		h.sendText(chatID, "Воронка недоступна")
		return
	}
	if err := h.sendFunnelChart(chatID, labels, values); err != nil {
		h.fail("funnel chart failed", err, chatID, "sendPhoto")
		text, err := h.funnel.Chart()
		if err != nil {
			h.fail("funnel read failed", err, chatID, "funnel")
			text = "Воронка недоступна"
		}
		h.sendText(chatID, text)
	}
}

// SendOutbound delivers a reply built by the usecase layer.
func (h *Handler) SendOutbound(out domain.Outbound) error {
	msg := tgbotapi.NewMessage(out.ChatID, out.Text)
	msg.ParseMode = out.ParseMode
	if out.Button != nil {
		msg.ReplyMarkup = webAppKeyboard(out.Button)
	}
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("send to %d: %w", out.ChatID, err)
	}
	return nil
}

func (h *Handler) sendText(chatID int64, text string) {
	if err := h.SendOutbound(domain.Outbound{ChatID: chatID, Text: text}); err != nil {
		h.fail("send text failed", err, chatID, "sendMessage")
	}
}

func (h *Handler) track(chatID int64, stage usecase.Stage) {
	if h.funnel == nil || chatID == 0 {
		return
	}
	if err := h.funnel.Reach(chatID, stage); err != nil {
		h.logger.Warn("funnel hit failed", "chat_id", chatID, "stage", stage, "error", err)
	}
}

func (h *Handler) fail(msg string, err error, chatID int64, op string) {
	h.logger.Error(msg, "chat_id", chatID, "error", err)
	if h.reporter != nil {
		h.reporter.CaptureError(err, map[string]string{"op": op, "chat_id": strconv.FormatInt(chatID, 10)})
	}
}

func (h *Handler) isAdmin(chatID int64) bool {
	_, ok := h.adminIDs[chatID]
	return ok
}

func chatIDOf(m *message) int64 {
	if m == nil || m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}

func (h *Handler) sendFunnelChart(chatID int64, labels []string, values []int) error {
	bars := make([]chart.Value, 0, len(labels))
	maxVal := 0
	for i := range labels {
		v := values[i]
		maxVal = max(maxVal, v)
		bars = append(bars, chart.Value{Value: float64(v), Label: labels[i]})
	}
	// go-chart rejects an empty range
	yMax := float64(maxVal)
	if yMax <= 0 {
		yMax = 1
	}
	graph := chart.BarChart{
		Width:    800,
		Height:   500,
		BarWidth: 80,
		Background: chart.Style{Padding: chart.Box{
			Top:    50,
			Left:   16,
			Right:  16,
			Bottom: 0,
		}},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: yMax}},
		Bars:  bars,
	}
	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return fmt.Errorf("render funnel chart: %w", err)
	}
	fname := "funnel_" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".png"
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: fname, Bytes: buf.Bytes()})
	photo.Caption = "Воронка Nimble Roulette"
	_, err := h.bot.Send(photo)
	return err
}
