package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"estatehub/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	chatChannelPrefix = "chat:"
	presenceKey       = "presence:connections"
)

// ChatChannel is the Redis Pub/Sub channel of one conversation.
func ChatChannel(chatID string) string {
	return chatChannelPrefix + chatID
}

// PublishMessage публікує повідомлення в Redis Pub/Sub
func (s *Service) PublishMessage(ctx context.Context, msg models.Message) error {
	if s.Redis == nil {
		return ErrNoPubSub
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, ChatChannel(msg.ChatID), msgBytes).Err()
}

// SubscribeMessages listens on every chat channel until ctx is cancelled.
// The returned channel is closed when the subscription ends.
func (s *Service) SubscribeMessages(ctx context.Context) (<-chan models.Message, error) {
	if s.Redis == nil {
		return nil, ErrNoPubSub
	}
	pubsub := s.Redis.PSubscribe(ctx, chatChannelPrefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan models.Message)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg models.Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					log.Printf("Error unmarshalling Redis message on %s: %v", m.Channel, err)
					continue
				}
				if msg.ChatID == "" {
					msg.ChatID = strings.TrimPrefix(m.Channel, chatChannelPrefix)
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// SetOnline counts open connections per user so a second tab closing does not
// mark the user offline.
func (s *Service) SetOnline(ctx context.Context, userID string, online bool) error {
	if s.Redis == nil {
		return nil
	}
	delta := int64(1)
	if !online {
		delta = -1
	}
	n, err := s.Redis.HIncrBy(ctx, presenceKey, userID, delta).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		return s.Redis.HDel(ctx, presenceKey, userID).Err()
	}
	return nil
}

func (s *Service) IsOnline(ctx context.Context, userID string) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	n, err := s.Redis.HGet(ctx, presenceKey, userID).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
