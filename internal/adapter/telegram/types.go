package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MihanyaZaretsky/nimble3tgbot/internal/domain"
)

// update extends tgbotapi.Update with Web App fields the library does not decode.
// The outer Message shadows the embedded one during unmarshalling.
type update struct {
	tgbotapi.Update
	Message *message `json:"message,omitempty"`
}

type message struct {
	tgbotapi.Message
	WebAppData *webAppData `json:"web_app_data,omitempty"`
}

type webAppData struct {
	Data       string `json:"data"`
	ButtonText string `json:"button_text"`
}

type webAppInfo struct {
	URL string `json:"url"`
}

type inlineButton struct {
	Text         string      `json:"text"`
	WebApp       *webAppInfo `json:"web_app,omitempty"`
	CallbackData string      `json:"callback_data,omitempty"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

func webAppKeyboard(b *domain.WebAppButton) inlineKeyboard {
	return inlineKeyboard{InlineKeyboard: [][]inlineButton{{
		{Text: b.Text, WebApp: &webAppInfo{URL: b.URL}},
	}}}
}

func (m *message) inbound() domain.Inbound {
	in := domain.Inbound{Text: m.Text, SenderName: displayName(m.From)}
	if m.Chat != nil {
		in.ChatID = m.Chat.ID
	}
	if m.WebAppData != nil {
		in.WebApp = &domain.WebAppData{Data: m.WebAppData.Data, ButtonText: m.WebAppData.ButtonText}
	}
	return in
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "игрок"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return "игрок"
}
