package handler_test

import (
	"context"

	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/models"
	"estatehub/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func optional[T any](args mock.Arguments, i int) *T {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(*T)
}

// User operations
func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	return optional[models.User](args, 0), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	return optional[models.User](args, 0), args.Error(1)
}

func (m *MockStorage) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	args := m.Called(chatID)
	return optional[models.User](args, 0), args.Error(1)
}

func (m *MockStorage) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ids)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) UpdateUser(ctx context.Context, user *models.User) error {
	return m.Called(user).Error(0)
}

// Post operations
func (m *MockStorage) CreatePost(ctx context.Context, post *models.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(id)
	return optional[models.Post](args, 0), args.Error(1)
}

func (m *MockStorage) UpdatePost(ctx context.Context, post *models.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockStorage) DeletePost(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockStorage) SearchPosts(ctx context.Context, q listing.Query) ([]models.Post, int64, error) {
	args := m.Called(q)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) PostsInBounds(ctx context.Context, b listing.Bounds, q listing.Query) ([]models.MapPin, error) {
	args := m.Called(b, q)
	return args.Get(0).([]models.MapPin), args.Error(1)
}

func (m *MockStorage) ToggleFavorite(ctx context.Context, userID, postID string) (bool, error) {
	args := m.Called(userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListFavoritePosts(ctx context.Context, userID string) ([]models.Post, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Post), args.Error(1)
}

// Chat operations
func (m *MockStorage) GetOrCreateDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	args := m.Called(userA, userB)
	return optional[models.Chat](args, 0), args.Error(1)
}

func (m *MockStorage) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	args := m.Called(chatID)
	return optional[models.Chat](args, 0), args.Error(1)
}

func (m *MockStorage) IsChatParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	args := m.Called(chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListChatsForUser(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.ChatSummary), args.Error(1)
}

func (m *MockStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	return m.Called(msg).Error(0)
}

func (m *MockStorage) GetMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	args := m.Called(chatID, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) MarkChatRead(ctx context.Context, chatID, readerID string) (int64, error) {
	args := m.Called(chatID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

// Reservation operations
func (m *MockStorage) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return m.Called(r).Error(0)
}

func (m *MockStorage) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(id)
	return optional[models.Reservation](args, 0), args.Error(1)
}

func (m *MockStorage) ListReservations(ctx context.Context, f storage.ReservationFilter) ([]models.Reservation, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) UpdateReservationStatus(ctx context.Context, id string, from, to models.ReservationStatus) (*models.Reservation, error) {
	args := m.Called(id, from, to)
	return optional[models.Reservation](args, 0), args.Error(1)
}

func (m *MockStorage) CountReservationsByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error) {
	args := m.Called()
	return args.Get(0).(map[models.ReservationStatus]int64), args.Error(1)
}

// Complaint operations
func (m *MockStorage) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	return m.Called(c).Error(0)
}

func (m *MockStorage) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(id)
	return optional[models.Complaint](args, 0), args.Error(1)
}

func (m *MockStorage) ListComplaints(ctx context.Context, f storage.ComplaintFilter) ([]models.Complaint, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Complaint), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) UpdateComplaintStatus(ctx context.Context, id string, from, to models.ComplaintStatus) (*models.Complaint, error) {
	args := m.Called(id, from, to)
	return optional[models.Complaint](args, 0), args.Error(1)
}

func (m *MockStorage) CountComplaintsByStatus(ctx context.Context) (map[models.ComplaintStatus]int64, error) {
	args := m.Called()
	return args.Get(0).(map[models.ComplaintStatus]int64), args.Error(1)
}

// Realtime operations
func (m *MockStorage) PublishMessage(ctx context.Context, msg models.Message) error {
	return m.Called(msg).Error(0)
}

func (m *MockStorage) SubscribeMessages(ctx context.Context) (<-chan models.Message, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan models.Message), args.Error(1)
}

func (m *MockStorage) SetOnline(ctx context.Context, userID string, online bool) error {
	return m.Called(userID, online).Error(0)
}

func (m *MockStorage) IsOnline(ctx context.Context, userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}
