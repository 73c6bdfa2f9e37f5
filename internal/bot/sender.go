package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender posts standalone messages outside the update loop. The queue worker
// uses it to announce job results without consuming updates.
type Sender struct {
	api    *tgbotapi.BotAPI
	logger *zerolog.Logger
}

func NewSender(token string, logger *zerolog.Logger) (*Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}

	return &Sender{api: api, logger: logger}, nil
}

func (s *Sender) SendHTML(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}

	return nil
}
