// Package telegram handles the integration with the Telegram Bot API: linking a
// marketplace account to a Telegram chat and pushing booking and moderation
// notifications to linked users.
package telegram

import (
	"context"
	"log"

	"estatehub/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used for outgoing messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers a short text to a user out of band.
type Notifier interface {
	Notify(ctx context.Context, user *models.User, text string) error
}

// BotNotifier sends notifications as Telegram messages to users who linked the bot.
// Users without a linked chat are skipped silently.
type BotNotifier struct {
	Sender Sender
}

func NewBotNotifier(sender Sender) *BotNotifier {
	return &BotNotifier{Sender: sender}
}

func (n *BotNotifier) Notify(ctx context.Context, user *models.User, text string) error {
	if user == nil || user.TelegramChatID == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(*user.TelegramChatID, text)
	if _, err := n.Sender.Send(msg); err != nil {
		log.Printf("ERROR: Failed to notify user %s via Telegram: %v", user.ID, err)
		return err
	}
	return nil
}

// NopNotifier is used when no bot token is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *models.User, string) error { return nil }
