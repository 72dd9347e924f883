package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLength is Telegram's limit on a text message.
const maxMessageLength = 4096

// ErrNoChat is returned when neither the message nor the sender names a chat.
var ErrNoChat = errors.New("telegram chat id is not configured")

// Sender posts text messages to a chat. A zero chatID means the default chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// chattable is the part of *tgbotapi.BotAPI used for delivery.
type chattable interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BotSender delivers through the Telegram Bot API.
type BotSender struct {
	bot         chattable
	defaultChat int64
}

// NewBotSender authorizes token with Telegram and returns a sender for defaultChat.
// PRE: token is a bot token from BotFather
// POST: returns an error when Telegram rejects the token
func NewBotSender(token string, defaultChat int64) (*BotSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorize: %w", err)
	}
	slog.Info("telegram_authorized", "bot", bot.Self.UserName)
	return &BotSender{bot: bot, defaultChat: defaultChat}, nil
}

// Send posts text, truncated to Telegram's message limit.
func (s *BotSender) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if chatID == 0 {
		chatID = s.defaultChat
	}
	if chatID == 0 {
		return ErrNoChat
	}
	msg := tgbotapi.NewMessage(chatID, truncate(text))
	msg.DisableWebPagePreview = true
	sent, err := s.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	slog.Info("telegram_sent", "chat_id", chatID, "message_id", sent.MessageID)
	return nil
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLength {
		return text
	}
	return string(r[:maxMessageLength-1]) + "…"
}

// NoopSender logs messages instead of posting them.
type NoopSender struct {
	mu   sync.Mutex
	sent []string
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records text.
func (s *NoopSender) Send(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	s.sent = append(s.sent, text)
	s.mu.Unlock()
	slog.Info("telegram_sent", "provider", "noop", "chat_id", chatID, "length", len(text))
	return nil
}

// Sent returns a copy of every recorded text.
func (s *NoopSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}
