package chathub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"estatehub/backend/internal/config"
	"estatehub/backend/internal/models"
)

var (
	ErrNotParticipant = errors.New("you are not a participant of this chat")
	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrMessageTooLong = errors.New("message is too long")
	ErrBadPayload     = errors.New("malformed payload")
	ErrUnknownEvent   = errors.New("unknown event")
	// ErrInternal stands in for storage failures, whose text stays in the server log.
	ErrInternal = errors.New("internal error")
)

var clientErrors = []error{ErrNotParticipant, ErrEmptyMessage, ErrMessageTooLong, ErrBadPayload, ErrUnknownEvent}

// publicError is the text a client may see for err.
func publicError(err error) string {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ErrInternal.Error()
}

func (m *ManagerService) handleIncoming(ctx context.Context, in Inbound) {
	var err error
	switch in.Envelope.Event {
	case models.EventJoinChat:
		err = m.handleJoin(ctx, in.Client, in.Envelope.Data)
	case models.EventLeaveChat:
		err = m.handleLeave(in.Client, in.Envelope.Data)
	case models.EventSendMessage:
		err = m.handleSend(ctx, in.Client, in.Envelope.Data)
	default:
		err = ErrUnknownEvent
	}

	if err != nil {
		log.Printf("WARNING: %s from %s rejected: %v", in.Envelope.Event, in.Client.GetUserID(), err)
	}
	m.ack(in.Client, in.Envelope, err)
}

// ack answers a frame that asked for one. Failures of frames without an ack id
// are reported as an error event instead.
func (m *ManagerService) ack(client Client, req models.Envelope, err error) {
	if _, ok := m.Clients[client]; !ok {
		return
	}
	reply := models.Ack{Success: err == nil}
	if err != nil {
		reply.Error = publicError(err)
	}

	event := models.EventAck
	if req.AckID == 0 {
		if err == nil {
			return
		}
		event = models.EventError
	}
	env, encErr := models.NewEnvelope(event, req.AckID, reply)
	if encErr != nil {
		log.Printf("ERROR: Failed to encode ack: %v", encErr)
		return
	}
	m.send(client, env)
}

func (m *ManagerService) authorize(ctx context.Context, chatID, userID string) error {
	if chatID == "" {
		return ErrBadPayload
	}
	ok, err := m.Storage.IsChatParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return nil
}

// handleJoin makes chatID the client's single active room, leaving the previous one.
func (m *ManagerService) handleJoin(ctx context.Context, client Client, data json.RawMessage) error {
	var req models.RoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ErrBadPayload
	}
	if err := m.authorize(ctx, req.ChatID, client.GetUserID()); err != nil {
		return err
	}
	if prev := client.GetRoomID(); prev != "" && prev != req.ChatID {
		log.Printf("INFO: %s left chat %s.", client.GetUserID(), prev)
	}
	client.SetRoomID(req.ChatID)
	log.Printf("INFO: %s joined chat %s.", client.GetUserID(), req.ChatID)
	return nil
}

func (m *ManagerService) handleLeave(client Client, data json.RawMessage) error {
	var req models.RoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ErrBadPayload
	}
	if client.GetRoomID() == req.ChatID {
		client.SetRoomID("")
	}
	return nil
}

// handleSend persists the message and fans it out. The sender is always the
// connection's user; the userId and user fields of the payload are ignored.
func (m *ManagerService) handleSend(ctx context.Context, client Client, data json.RawMessage) error {
	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ErrBadPayload
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > config.MaxMessageLength {
		return ErrMessageTooLong
	}
	if err := m.authorize(ctx, req.ChatID, client.GetUserID()); err != nil {
		return err
	}

	profile := client.GetProfile()
	msg := &models.Message{
		ChatID:   req.ChatID,
		UserID:   client.GetUserID(),
		Text:     text,
		ClientID: req.ClientID,
		Sender:   &profile,
	}
	if err := m.Storage.SaveMessage(ctx, msg); err != nil {
		log.Printf("ERROR: Failed to save message in chat %s: %v", req.ChatID, err)
		return errors.New("failed to save message")
	}
	if err := m.fanOut(ctx, *msg); err != nil {
		// the message is stored and will show up with history
		log.Printf("ERROR: Failed to publish message %s: %v", msg.ID, err)
	}
	return nil
}
