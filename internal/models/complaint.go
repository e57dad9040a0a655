package models

import (
	"time"

	"gorm.io/gorm"
)

// ComplaintStatus is the moderation state of a complaint.
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "PENDING"
	ComplaintResolved ComplaintStatus = "RESOLVED"
	ComplaintRejected ComplaintStatus = "REJECTED"
)

// Complaint is a user-filed report against a post, moderated by staff.
type Complaint struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	PostID      string          `gorm:"type:uuid;not null;index" json:"postId"`
	Post        *Post           `gorm:"foreignKey:PostID" json:"post,omitempty"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"userId"`
	Reason      string          `gorm:"type:text;not null" json:"reason"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Status      ComplaintStatus `gorm:"type:text;not null;default:PENDING;index" json:"status"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BeforeCreate assigns the complaint id and the initial status.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	assignID(&c.ID)
	if c.Status == "" {
		c.Status = ComplaintPending
	}
	return
}
