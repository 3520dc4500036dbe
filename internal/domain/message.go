package domain

// WebAppData is the payload a Web App posts back through Telegram.WebApp.sendData.
type WebAppData struct {
	Data       string
	ButtonText string
}

// Inbound is the part of a Telegram update the bot cares about.
type Inbound struct {
	ChatID     int64
	SenderName string
	Text       string
	WebApp     *WebAppData
}

// WebAppButton opens a Web App from an inline keyboard.
type WebAppButton struct {
	Text string
	URL  string
}

// Outbound is one reply to a chat; Button, when set, is rendered as a Web App keyboard.
type Outbound struct {
	ChatID    int64
	Text      string
	ParseMode string
	Button    *WebAppButton
}
