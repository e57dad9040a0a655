package storage

import (
	"context"
	"errors"
	"log"
	"strings"

	"estatehub/backend/internal/models"

	"gorm.io/gorm"
)

// CreateUser зберігає нового користувача; дублікат email повертає ErrConflict.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := s.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	if err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", user.Email, err)
		return err
	}
	log.Printf("INFO: New user %s registered.", user.ID)
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("telegram_chat_id = ?", chatID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if checkIDs(id) == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return users, nil
	}
	if err := s.DB.WithContext(ctx).Where("id IN ?", valid).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	err := s.DB.WithContext(ctx).Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}
