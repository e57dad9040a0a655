// Package chathub is the server side of real-time chat: it tracks connected
// clients and the room each one has joined, persists messages and fans them
// out to room members on every replica through Redis Pub/Sub.
package chathub

import (
	"context"
	"errors"
	"log"

	"estatehub/backend/internal/models"
	"estatehub/backend/internal/storage"
)

// Storage is the subset of storage the hub depends on.
type Storage interface {
	IsChatParticipant(ctx context.Context, chatID, userID string) (bool, error)
	SaveMessage(ctx context.Context, msg *models.Message) error
	PublishMessage(ctx context.Context, msg models.Message) error
	SubscribeMessages(ctx context.Context) (<-chan models.Message, error)
	SetOnline(ctx context.Context, userID string, online bool) error
}

// ManagerService is the hub. All fields below the channels are owned by the
// Run goroutine.
type ManagerService struct {
	Clients map[Client]bool

	// Channels
	IncomingCh   chan Inbound
	RegisterCh   chan Client
	UnregisterCh chan Client
	PubSubCh     chan models.Message

	Storage Storage

	// local is set when Redis is unavailable and messages are delivered in-process.
	local bool
	done  chan struct{}
}

// NewManagerService creates a hub backed by s.
func NewManagerService(s Storage) *ManagerService {
	return &ManagerService{
		Clients:      make(map[Client]bool),
		IncomingCh:   make(chan Inbound),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		PubSubCh:     make(chan models.Message, 64),
		Storage:      s,
		done:         make(chan struct{}),
	}
}

// Done is closed when Run returns. Pumps select on it so they never block on a stopped hub.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}

// Run is the hub loop. It returns when ctx is cancelled, closing every client.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)
	m.startPubSubListener(ctx)

	for {
		select {
		case <-ctx.Done():
			for client := range m.Clients {
				m.drop(client)
			}
			log.Println("INFO: Chat hub stopped.")
			return

		case client := <-m.RegisterCh:
			m.Clients[client] = true
			m.setOnline(ctx, client.GetUserID(), true)
			log.Printf("INFO: Client %s connected (%d online).", client.GetUserID(), len(m.Clients))

		case client := <-m.UnregisterCh:
			if _, ok := m.Clients[client]; ok {
				m.drop(client)
				log.Printf("INFO: Client %s disconnected.", client.GetUserID())
			}

		case in := <-m.IncomingCh:
			if _, ok := m.Clients[in.Client]; !ok {
				continue
			}
			m.handleIncoming(ctx, in)

		case msg := <-m.PubSubCh:
			m.broadcast(msg)
		}
	}
}

// drop removes the client from the hub and closes its send side.
func (m *ManagerService) drop(client Client) {
	delete(m.Clients, client)
	// presence is best effort; the hub context may already be cancelled
	m.setOnline(context.Background(), client.GetUserID(), false)
	client.Close()
}

func (m *ManagerService) setOnline(ctx context.Context, userID string, online bool) {
	if err := m.Storage.SetOnline(ctx, userID, online); err != nil {
		log.Printf("WARNING: Failed to update presence for %s: %v", userID, err)
	}
}

// send queues env on the client. A client whose buffer is full is too slow to
// keep up and is disconnected.
func (m *ManagerService) send(client Client, env models.Envelope) {
	select {
	case client.GetSendChannel() <- env:
	default:
		log.Printf("WARNING: Send buffer of %s is full, dropping client.", client.GetUserID())
		m.drop(client)
	}
}

// broadcast delivers a stored message to every local client joined to its chat.
func (m *ManagerService) broadcast(msg models.Message) {
	env, err := models.NewEnvelope(models.EventNewMessage, 0, msg)
	if err != nil {
		log.Printf("ERROR: Failed to encode message %s: %v", msg.ID, err)
		return
	}
	for client := range m.Clients {
		if client.GetRoomID() == msg.ChatID {
			m.send(client, env)
		}
	}
}

// fanOut hands a stored message to Pub/Sub, or delivers it in-process when
// there is no Redis.
func (m *ManagerService) fanOut(ctx context.Context, msg models.Message) error {
	if m.local {
		m.broadcast(msg)
		return nil
	}
	err := m.Storage.PublishMessage(ctx, msg)
	if errors.Is(err, storage.ErrNoPubSub) {
		m.local = true
		m.broadcast(msg)
		return nil
	}
	return err
}
