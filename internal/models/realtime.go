package models

import "encoding/json"

// Chat socket event names.
const (
	EventJoinChat    = "joinChat"
	EventLeaveChat   = "leaveChat"
	EventSendMessage = "sendMessage"
	EventNewMessage  = "newMessage"
	EventAck         = "ack"
	EventError       = "error"
)

// Envelope is one frame on the chat socket.
// AckID is set by the client when it expects an acknowledgement and echoed back on the ack frame.
type Envelope struct {
	Event string          `json:"event"`
	AckID uint64          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomRequest is the payload of joinChat and leaveChat.
type RoomRequest struct {
	ChatID string `json:"chatId"`
}

// SendMessageRequest is the payload of sendMessage.
type SendMessageRequest struct {
	ChatID   string     `json:"chatId"`
	UserID   string     `json:"userId"`
	Message  string     `json:"message"`
	User     PublicUser `json:"user"`
	ClientID string     `json:"clientId,omitempty"`
}

// Ack is the acknowledgement for a client frame that carried an AckID.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewEnvelope marshals data into an envelope for event.
func NewEnvelope(event string, ackID uint64, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, AckID: ackID, Data: raw}, nil
}
