package models

import (
	"time"

	"gorm.io/gorm"
)

// ReservationStatus is the lifecycle state of a booking request.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a booking request against a rental post for a date range.
type Reservation struct {
	ID         string            `gorm:"primaryKey;type:uuid" json:"id"`
	PostID     string            `gorm:"type:uuid;not null;index" json:"postId"`
	Post       *Post             `gorm:"foreignKey:PostID" json:"post,omitempty"`
	UserID     string            `gorm:"type:uuid;not null;index" json:"userId"`
	StartDate  time.Time         `gorm:"not null" json:"startDate"`
	EndDate    time.Time         `gorm:"not null" json:"endDate"`
	TotalPrice float64           `gorm:"not null" json:"totalPrice"`
	Status     ReservationStatus `gorm:"type:text;not null;default:PENDING;index" json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// BeforeCreate assigns the reservation id and the initial status.
func (r *Reservation) BeforeCreate(tx *gorm.DB) (err error) {
	assignID(&r.ID)
	if r.Status == "" {
		r.Status = ReservationPending
	}
	return
}

// Nights is the number of whole nights between StartDate and EndDate.
func (r *Reservation) Nights() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}
