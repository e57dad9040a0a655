package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role distinguishes regular users from moderation staff.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User представляє користувача маркетплейсу.
// PasswordHash never leaves the server; TelegramChatID is set when the user links the bot.
type User struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Name           string    `gorm:"not null" json:"name"`
	Image          string    `json:"image,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Role           Role      `gorm:"type:text;not null;default:USER" json:"role"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	TelegramChatID *int64    `gorm:"uniqueIndex" json:"-"`
	IsBlocked      bool      `gorm:"not null;default:false" json:"isBlocked"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BeforeCreate викликається GORM перед створенням запису.
// Він генерує новий UUID для користувача, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	assignID(&u.ID)
	if u.Role == "" {
		u.Role = RoleUser
	}
	return
}

// IsAdmin reports whether the user may moderate complaints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the sender card attached to chat messages and profiles.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Public strips private fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Image: u.Image}
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}
