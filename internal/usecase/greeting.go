package usecase

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MihanyaZaretsky/nimble3tgbot/internal/domain"
)

// Ответы бота, независимые от транспорта

const (
	OpenButtonText = "🎮 Открыть Nimble Roulette"
	AckText        = "🎉 Данные получены! Скоро здесь будет обработка результатов игры."
	ProbeText      = "🎉 ТЕСТ: Команда /start работает!"
)

type Greeter interface {
	Welcome(in domain.Inbound) domain.Outbound
	Acknowledge(in domain.Inbound) domain.Outbound
}

// RouletteGreeter greets with a Markdown message and a Web App button.
type RouletteGreeter struct {
	WebAppURL string
}

func NewRouletteGreeter(webAppURL string) *RouletteGreeter {
	return &RouletteGreeter{WebAppURL: webAppURL}
}

func (g *RouletteGreeter) Welcome(in domain.Inbound) domain.Outbound {
	name := tgbotapi.EscapeText(tgbotapi.ModeMarkdown, in.SenderName)
	text := fmt.Sprintf("🎰 Добро пожаловать в *Nimble Roulette*, %s! 🎰\n\n"+
		"🎲 Готов испытать удачу? Нажми на кнопку ниже, чтобы открыть игру!\n\n"+
		"🎮 *Nimble Roulette* - это захватывающая игра, где каждый может стать победителем!", name)
	return domain.Outbound{
		ChatID:    in.ChatID,
		Text:      text,
		ParseMode: tgbotapi.ModeMarkdown,
		Button:    &domain.WebAppButton{Text: OpenButtonText, URL: g.WebAppURL},
	}
}

func (g *RouletteGreeter) Acknowledge(in domain.Inbound) domain.Outbound {
	return domain.Outbound{ChatID: in.ChatID, Text: AckText}
}

// ProbeGreeter answers /start with a plain text, used to smoke-test a token.
type ProbeGreeter struct{}

func (ProbeGreeter) Welcome(in domain.Inbound) domain.Outbound {
	return domain.Outbound{ChatID: in.ChatID, Text: ProbeText}
}

func (ProbeGreeter) Acknowledge(in domain.Inbound) domain.Outbound {
	return domain.Outbound{ChatID: in.ChatID, Text: AckText}
}
