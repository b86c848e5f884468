package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSink mirrors reminders to a private chat, for the case where the
// desktop session is away. It sends only; it never polls for updates.
type TelegramSink struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &TelegramSink{api: api, chatID: chatID}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Notify(_ context.Context, event Event) error {
	msg := tgbotapi.NewMessage(s.chatID, formatEvent(event))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func formatEvent(event Event) string {
	var sb strings.Builder
	switch event.Kind {
	case KindStartReminder:
		sb.WriteString("⏰ <b>Start reminder</b>\n")
	case KindDailyAgenda:
		sb.WriteString("📋 <b>Daily agenda</b>\n")
		sb.WriteString(html.EscapeString(event.Message))
		return sb.String()
	default:
		sb.WriteString("🔔 <b>Scheduled reminder</b>\n")
	}
	sb.WriteString(fmt.Sprintf("%s\n🗓 %s", html.EscapeString(event.Title), event.StartLabel()))
	if event.Message != "" {
		sb.WriteString("\n")
		sb.WriteString(html.EscapeString(event.Message))
	}
	return sb.String()
}
