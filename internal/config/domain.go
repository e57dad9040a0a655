package config

import "time"

const (
	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Chat
	MaxMessageLength = 2000
	ChatHistoryLimit = 200
	ClientSendBuffer = 256

	// Auth
	TokenTTL    = 72 * time.Hour
	TokenIssuer = "estatehub-service"

	// Reservations
	MaxReservationNights = 365
)

// ComplaintReasons is the closed list of reasons a user can pick when reporting a post.
var ComplaintReasons = []string{
	"FRAUD",
	"WRONG_PRICE",
	"WRONG_ADDRESS",
	"ALREADY_SOLD",
	"OFFENSIVE_CONTENT",
	"DUPLICATE",
	"OTHER",
}

// IsComplaintReason reports whether reason is one of ComplaintReasons.
func IsComplaintReason(reason string) bool {
	for _, r := range ComplaintReasons {
		if r == reason {
			return true
		}
	}
	return false
}
