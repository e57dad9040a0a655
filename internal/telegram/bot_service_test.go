package telegram

import (
	"context"
	"errors"
	"estatehub/backend/internal/models"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLinkStorage is a mock implementation of the LinkStorage interface
type MockLinkStorage struct {
	mock.Mock
}

func (m *MockLinkStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockLinkStorage) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockLinkStorage) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg.Text
}

func command(text string, length int, chatID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		},
		From: &tgbotapi.User{ID: chatID},
		Chat: tgbotapi.Chat{ID: chatID},
	}
}

func TestHandleCommand_StartLinksChat(t *testing.T) {
	// Arrange
	store := new(MockLinkStorage)
	sender := &fakeSender{}
	svc := &BotService{
		Sender:  sender,
		Storage: store,
		Verify: func(token string) (string, error) {
			assert.Equal(t, "link-token", token)
			return "user-uuid", nil
		},
	}
	user := &models.User{ID: "user-uuid"}
	store.On("GetUserByID", "user-uuid").Return(user, nil)
	store.On("UpdateUser", mock.MatchedBy(func(u *models.User) bool {
		return u.TelegramChatID != nil && *u.TelegramChatID == 4242
	})).Return(nil)

	// Act
	svc.HandleCommand(context.Background(), command("/start link-token", 6, 4242))

	// Assert
	store.AssertExpectations(t)
	assert.Contains(t, sender.lastText(t), "connected")
}

func TestHandleCommand_StartWithBadToken(t *testing.T) {
	store := new(MockLinkStorage)
	sender := &fakeSender{}
	svc := &BotService{
		Sender:  sender,
		Storage: store,
		Verify:  func(string) (string, error) { return "", errors.New("expired") },
	}

	svc.HandleCommand(context.Background(), command("/start stale", 6, 7))

	store.AssertNotCalled(t, "UpdateUser", mock.Anything)
	assert.Contains(t, sender.lastText(t), "invalid or expired")
}

func TestHandleCommand_StopUnlinks(t *testing.T) {
	store := new(MockLinkStorage)
	sender := &fakeSender{}
	svc := &BotService{Sender: sender, Storage: store}
	chatID := int64(99)
	user := &models.User{ID: "u1", TelegramChatID: &chatID}
	store.On("GetUserByTelegramChatID", chatID).Return(user, nil)
	store.On("UpdateUser", mock.MatchedBy(func(u *models.User) bool { return u.TelegramChatID == nil })).Return(nil)

	svc.HandleCommand(context.Background(), command("/stop", 5, chatID))

	store.AssertExpectations(t)
	assert.Equal(t, "Notifications are disconnected.", sender.lastText(t))
}

func TestHandleCommand_IgnoresOtherCommands(t *testing.T) {
	sender := &fakeSender{}
	svc := &BotService{Sender: sender, Storage: new(MockLinkStorage)}

	svc.HandleCommand(context.Background(), command("/help", 5, 1))

	assert.Empty(t, sender.sent)
}

func TestBotNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewBotNotifier(sender)
	chatID := int64(5)

	require.NoError(t, n.Notify(context.Background(), &models.User{ID: "u1"}, "skipped"))
	assert.Empty(t, sender.sent, "users without a linked chat are skipped")

	require.NoError(t, n.Notify(context.Background(), &models.User{ID: "u2", TelegramChatID: &chatID}, "hello"))
	assert.Equal(t, "hello", sender.lastText(t))

	sender.err = errors.New("telegram down")
	assert.Error(t, n.Notify(context.Background(), &models.User{ID: "u2", TelegramChatID: &chatID}, "again"))
}
