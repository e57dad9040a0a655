package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"estatehub/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateDirectChat returns the two-party conversation between userA and userB,
// creating it on first contact.
func (s *Service) GetOrCreateDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	if err := checkIDs(userA, userB); err != nil {
		return nil, err
	}
	key := models.PairKey(userA, userB)

	var chat models.Chat
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Participants").Where("pair_key = ?", key).First(&chat).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		chat = models.Chat{
			PairKey: &key,
			Participants: []models.ChatParticipant{
				{UserID: userA},
				{UserID: userB},
			},
		}
		return tx.Omit("Participants.User").Create(&chat).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race against a concurrent first contact; the row exists now.
		return s.getChatByPairKey(ctx, key)
	}
	if err != nil {
		log.Printf("ERROR: Failed to get or create chat %s: %v", key, err)
		return nil, err
	}
	return &chat, nil
}

func (s *Service) getChatByPairKey(ctx context.Context, key string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.DB.WithContext(ctx).Preload("Participants").Where("pair_key = ?", key).First(&chat).Error; err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

func (s *Service) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	if err := checkIDs(chatID); err != nil {
		return nil, err
	}
	var chat models.Chat
	if err := s.DB.WithContext(ctx).Preload("Participants").Where("id = ?", chatID).First(&chat).Error; err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

func (s *Service) IsChatParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	if checkIDs(chatID, userID) != nil {
		return false, nil
	}
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListChatsForUser returns the user's conversations, most recently active first,
// with the last message and the number of unread messages from other participants.
func (s *Service) ListChatsForUser(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	db := s.DB.WithContext(ctx)

	var chats []models.Chat
	err := db.Preload("Participants.User").
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id AND cp.user_id = ?", userID).
		Order("chats.updated_at desc").
		Find(&chats).Error
	if err != nil {
		log.Printf("ERROR: Failed to list chats for user %s: %v", userID, err)
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := models.ChatSummary{ID: chat.ID, UpdatedAt: chat.UpdatedAt}
		for _, p := range chat.Participants {
			summary.Participants = append(summary.Participants, p.User.Public())
		}

		var last models.Message
		err := db.Where("chat_id = ?", chat.ID).Order("sent_at desc").Limit(1).Find(&last).Error
		if err != nil {
			return nil, err
		}
		if last.ID != "" {
			summary.LastMessage = &last
		}

		err = db.Model(&models.Message{}).
			Where("chat_id = ? AND user_id <> ? AND is_read = ?", chat.ID, userID, false).
			Count(&summary.UnreadCount).Error
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// SaveMessage зберігає повідомлення. The chat row is locked so that SentAt is
// strictly later than the previous message of the same chat, even across replicas.
func (s *Service) SaveMessage(ctx context.Context, msg *models.Message) error {
	if err := checkIDs(msg.ChatID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat models.Chat
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", msg.ChatID).
			First(&chat).Error
		if err != nil {
			return notFound(err)
		}

		if msg.SentAt.IsZero() {
			msg.SentAt = time.Now().UTC()
		}
		msg.SentAt = msg.SentAt.Truncate(time.Microsecond)
		var last models.Message
		if err := tx.Where("chat_id = ?", msg.ChatID).Order("sent_at desc").Limit(1).Find(&last).Error; err != nil {
			return err
		}
		if last.ID != "" && !msg.SentAt.After(last.SentAt) {
			msg.SentAt = last.SentAt.Add(time.Microsecond)
		}

		if err := tx.Create(msg).Error; err != nil {
			log.Printf("ERROR: Failed to save message for chat %s: %v", msg.ChatID, err)
			return err
		}
		return tx.Model(&chat).Update("updated_at", msg.SentAt).Error
	})
}

// GetMessages returns the newest limit messages of the chat in chronological order.
func (s *Service) GetMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	if err := checkIDs(chatID); err != nil {
		return nil, err
	}
	var msgs []models.Message
	err := s.DB.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("sent_at desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		log.Printf("ERROR: Failed to get chat history for chat %s: %v", chatID, err)
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// MarkChatRead marks every message from other participants as read.
func (s *Service) MarkChatRead(ctx context.Context, chatID, readerID string) (int64, error) {
	if err := checkIDs(chatID); err != nil {
		return 0, err
	}
	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND user_id <> ? AND is_read = ?", chatID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
