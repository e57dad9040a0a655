package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat is a conversation between a set of users.
// Messages are append-only; insertion order is chronological order.
type Chat struct {
	ID           string            `gorm:"primaryKey;type:uuid" json:"id"`
	PairKey      *string           `gorm:"uniqueIndex" json:"-"`
	Participants []ChatParticipant `gorm:"foreignKey:ChatID" json:"participants"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// BeforeCreate assigns the chat id.
func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	assignID(&c.ID)
	return
}

// ChatParticipant is one membership row of a chat.
type ChatParticipant struct {
	ChatID string `gorm:"primaryKey;type:uuid" json:"chatId"`
	UserID string `gorm:"primaryKey;type:uuid;index" json:"userId"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
}

// HasParticipant reports whether userID is a member of the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// PairKey returns the order-independent key of a two-party conversation.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// Message represents a saved chat message.
// The JSON shape is the newMessage event payload.
type Message struct {
	ID       string      `gorm:"primaryKey;type:uuid" json:"id"`
	ChatID   string      `gorm:"type:uuid;not null;index:idx_chat_sent" json:"chatId"`
	UserID   string      `gorm:"type:uuid;not null" json:"userId"`
	Text     string      `gorm:"type:text;not null" json:"messageText"`
	SentAt   time.Time   `gorm:"not null;index:idx_chat_sent" json:"sentAt"`
	IsRead   bool        `gorm:"not null;default:false" json:"isRead"`
	ClientID string      `gorm:"-" json:"clientId,omitempty"`
	Sender   *PublicUser `gorm:"-" json:"user,omitempty"`
}

// BeforeCreate assigns the message id.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	assignID(&m.ID)
	return
}

// ChatSummary is one row of the conversation list.
type ChatSummary struct {
	ID           string       `json:"id"`
	Participants []PublicUser `json:"participants"`
	LastMessage  *Message     `json:"lastMessage,omitempty"`
	UnreadCount  int64        `json:"unreadCount"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
