package chathub

import "estatehub/backend/internal/models"

// Client is the interface for any type of connection to the hub.
// Room state is owned by the hub goroutine: only the hub calls SetRoomID.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetProfile returns the public identity attached to outgoing messages.
	GetProfile() models.PublicUser
	// GetRoomID returns the chat the client is currently joined to, or "".
	GetRoomID() string
	SetRoomID(string)

	// GetSendChannel returns the channel the hub writes outbound frames to.
	GetSendChannel() chan<- models.Envelope

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the outbound side down. The hub calls it exactly once.
	Close()
}

// Inbound is a frame read from a client, tagged with its origin.
type Inbound struct {
	Client   Client
	Envelope models.Envelope
}
