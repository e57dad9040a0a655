// Package storage is the persistence layer: PostgreSQL through gorm for the
// marketplace records and Redis for chat fan-out and presence.
package storage

import (
	"context"
	"errors"

	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with existing data")
	// ErrStaleStatus means the row was no longer in the expected status when the update ran.
	ErrStaleStatus = errors.New("status changed concurrently")
	ErrNoPubSub    = errors.New("pub/sub is not configured")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	SearchPosts(ctx context.Context, q listing.Query) ([]models.Post, int64, error)
	PostsInBounds(ctx context.Context, b listing.Bounds, q listing.Query) ([]models.MapPin, error)

	ToggleFavorite(ctx context.Context, userID, postID string) (bool, error)
	ListFavoritePosts(ctx context.Context, userID string) ([]models.Post, error)
}

type ChatStore interface {
	GetOrCreateDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	IsChatParticipant(ctx context.Context, chatID, userID string) (bool, error)
	ListChatsForUser(ctx context.Context, userID string) ([]models.ChatSummary, error)
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error)
	MarkChatRead(ctx context.Context, chatID, readerID string) (int64, error)
}

// ReservationFilter selects reservations for a list view. Exactly one of UserID
// (renter side) or OwnerID (post owner side) is normally set.
type ReservationFilter struct {
	UserID  string
	OwnerID string
	PostID  string
	Status  models.ReservationStatus
	Page    int
	Limit   int
}

// ComplaintFilter selects complaints for the moderation dashboard.
type ComplaintFilter struct {
	UserID string
	PostID string
	Status models.ComplaintStatus
	Page   int
	Limit  int
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error)
	UpdateReservationStatus(ctx context.Context, id string, from, to models.ReservationStatus) (*models.Reservation, error)
	CountReservationsByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error)
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, int64, error)
	UpdateComplaintStatus(ctx context.Context, id string, from, to models.ComplaintStatus) (*models.Complaint, error)
	CountComplaintsByStatus(ctx context.Context) (map[models.ComplaintStatus]int64, error)
}

// Realtime is the cross-replica side of the chat hub.
type Realtime interface {
	PublishMessage(ctx context.Context, msg models.Message) error
	SubscribeMessages(ctx context.Context) (<-chan models.Message, error)
	SetOnline(ctx context.Context, userID string, online bool) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

type Storage interface {
	UserStore
	PostStore
	ChatStore
	ReservationStore
	ComplaintStore
	Realtime
}

// Service implements Storage. Redis may be nil, in which case the Realtime
// methods return ErrNoPubSub or report everyone offline.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate створює або оновлює таблиці для всіх моделей.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Favorite{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.Reservation{},
		&models.Complaint{},
	)
}

// checkIDs rejects ids that cannot name a row. Key columns are uuid, and
// Postgres fails the whole query on malformed input instead of matching nothing.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return ErrNotFound
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	page, limit = listing.Paginate(page, limit)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
