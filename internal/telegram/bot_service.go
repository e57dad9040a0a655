package telegram

import (
	"context"
	"log"
	"strings"

	"estatehub/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LinkStorage defines the storage methods required by the bot.
type LinkStorage interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// LinkTokenVerifier resolves the payload of a /start deep link to a user id.
type LinkTokenVerifier func(token string) (userID string, err error)

// BotService is responsible for receiving Telegram updates.
type BotService struct {
	BotAPI  *tgbotapi.BotAPI
	Sender  Sender
	Storage LinkStorage
	Verify  LinkTokenVerifier
}

// NewBotService creates a new BotService instance.
func NewBotService(token string, s LinkStorage, verify LinkTokenVerifier) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &BotService{
		BotAPI:  bot,
		Sender:  bot,
		Storage: s,
		Verify:  verify,
	}, nil
}

// Run is the main loop for receiving Telegram updates. It returns when ctx is done.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)
	defer s.BotAPI.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil && update.Message.IsCommand() {
				s.HandleCommand(ctx, update.Message)
			}
		}
	}
}

// HandleCommand processes /start <token> (link) and /stop (unlink).
func (s *BotService) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var reply string
	switch msg.Command() {
	case "start":
		reply = s.link(ctx, msg.Chat.ID, strings.TrimSpace(msg.CommandArguments()))
	case "stop":
		reply = s.unlink(ctx, msg.Chat.ID)
	default:
		return
	}

	if _, err := s.Sender.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		log.Printf("Error sending bot reply to chat %d: %v", msg.Chat.ID, err)
	}
}

func (s *BotService) link(ctx context.Context, chatID int64, token string) string {
	if token == "" {
		return "Open the link from your profile page to connect notifications."
	}
	userID, err := s.Verify(token)
	if err != nil {
		return "This link is invalid or expired. Request a new one from your profile page."
	}
	user, err := s.Storage.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("Error retrieving user %s for Telegram link: %v", userID, err)
		return "An error occurred while processing your request."
	}
	user.TelegramChatID = &chatID
	if err := s.Storage.UpdateUser(ctx, user); err != nil {
		log.Printf("Error linking Telegram chat for user %s: %v", userID, err)
		return "Failed to connect notifications. Please try again later."
	}
	log.Printf("INFO: User %s linked Telegram chat %d.", userID, chatID)
	return "Notifications are connected. You will get booking and complaint updates here."
}

func (s *BotService) unlink(ctx context.Context, chatID int64) string {
	user, err := s.Storage.GetUserByTelegramChatID(ctx, chatID)
	if err != nil {
		return "This chat is not connected to an account."
	}
	user.TelegramChatID = nil
	if err := s.Storage.UpdateUser(ctx, user); err != nil {
		log.Printf("Error unlinking Telegram chat for user %s: %v", user.ID, err)
		return "Failed to disconnect notifications. Please try again later."
	}
	return "Notifications are disconnected."
}
