package chathub_test

import (
	"context"

	"estatehub/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of chathub.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) IsChatParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	args := m.Called(chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) PublishMessage(ctx context.Context, msg models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) SubscribeMessages(ctx context.Context) (<-chan models.Message, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan models.Message), args.Error(1)
}

func (m *MockStorage) SetOnline(ctx context.Context, userID string, online bool) error {
	args := m.Called(userID, online)
	return args.Error(0)
}
