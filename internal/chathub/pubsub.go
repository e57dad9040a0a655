package chathub

import (
	"context"
	"errors"
	"log"

	"estatehub/backend/internal/storage"
)

// startPubSubListener forwards messages published by any replica into the hub loop.
// Without Redis the hub switches to local delivery.
func (m *ManagerService) startPubSubListener(ctx context.Context) {
	ch, err := m.Storage.SubscribeMessages(ctx)
	if errors.Is(err, storage.ErrNoPubSub) {
		log.Println("WARNING: Redis is not configured, chat messages are delivered locally only.")
		m.local = true
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to subscribe to chat channels, falling back to local delivery: %v", err)
		m.local = true
		return
	}

	go func() {
		for msg := range ch {
			select {
			case m.PubSubCh <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
}
