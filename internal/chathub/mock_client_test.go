package chathub_test

import (
	"sync"
	"sync/atomic"

	"estatehub/backend/internal/models"
)

type MockClient struct {
	userID string
	roomID string
	send   chan models.Envelope
	once   sync.Once
	closed atomic.Bool
}

func newMockClient(userID string, buffer int) *MockClient {
	return &MockClient{
		userID: userID,
		send:   make(chan models.Envelope, buffer),
	}
}

func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) GetProfile() models.PublicUser {
	return models.PublicUser{ID: c.userID, Name: "name-" + c.userID}
}

func (c *MockClient) GetRoomID() string { return c.roomID }

func (c *MockClient) SetRoomID(roomID string) { c.roomID = roomID }

func (c *MockClient) GetSendChannel() chan<- models.Envelope { return c.send }

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.once.Do(func() {
		c.closed.Store(true)
		close(c.send)
	})
}
