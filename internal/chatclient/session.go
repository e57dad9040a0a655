// Package chatclient is the client side of the chat socket: a Session that
// owns one connection and one active room, and the Timeline/View pair that
// renders a conversation from history, live events and optimistic sends.
package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"estatehub/backend/internal/models"

	"github.com/gorilla/websocket"
)

var (
	ErrNotConnected = errors.New("chatclient: not connected")
	// ErrRejected wraps a negative acknowledgement from the server.
	ErrRejected = errors.New("chatclient: rejected by server")
)

// State is the connection state reported to OnConnectionStateChange handlers.
type State string

const (
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

const defaultAckTimeout = 10 * time.Second

// Meta carries the optional parts of a sendMessage payload.
type Meta struct {
	User     models.PublicUser
	ClientID string
}

// Session is a single chat socket connection. It is safe for concurrent use.
// Message handlers run on a dispatch goroutine of the connection, one at a time
// and in the order the server sent the frames, so a handler may itself call
// SendMessage or JoinRoom.
type Session struct {
	URL        string
	Header     http.Header
	Dialer     *websocket.Dialer
	AckTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed chan struct{}
	// dialing is closed when the in-flight dial returns.
	dialing   chan struct{}
	dialAbort bool
	room      string
	nextAck   uint64
	pending   map[uint64]chan models.Ack

	onMessage []func(models.Message)
	onState   []func(State)

	writeMu sync.Mutex
}

// NewSession prepares a session for url. Nothing is dialed until Connect.
func NewSession(url string, header http.Header) *Session {
	return &Session{
		URL:        url,
		Header:     header,
		Dialer:     websocket.DefaultDialer,
		AckTimeout: defaultAckTimeout,
		pending:    make(map[uint64]chan models.Ack),
	}
}

// OnMessage registers a handler for newMessage events.
func (s *Session) OnMessage(h func(models.Message)) {
	s.mu.Lock()
	s.onMessage = append(s.onMessage, h)
	s.mu.Unlock()
}

// OnConnectionStateChange registers a handler for connect/disconnect transitions.
func (s *Session) OnConnectionStateChange(h func(State)) {
	s.mu.Lock()
	s.onState = append(s.onState, h)
	s.mu.Unlock()
}

// Connected reports whether the session currently holds a live connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Room returns the remembered active room, kept across disconnects.
func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Connect dials the server. It is a no-op on a connected session. A room that
// was active before a disconnect is joined again.
func (s *Session) Connect(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.conn != nil {
			s.mu.Unlock()
			return nil
		}
		if s.dialing == nil {
			break
		}
		wait := s.dialing
		s.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	s.dialing = done
	s.dialAbort = false
	s.mu.Unlock()

	conn, _, err := s.Dialer.DialContext(ctx, s.URL, s.Header)

	s.mu.Lock()
	s.dialing = nil
	close(done)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("chatclient: dial: %w", err)
	}
	if s.dialAbort {
		s.mu.Unlock()
		conn.Close()
		return ErrNotConnected
	}
	closed := make(chan struct{})
	s.conn = conn
	s.closed = closed
	room := s.room
	s.mu.Unlock()

	go s.readLoop(conn)
	s.emitState(StateConnected)

	if room == "" {
		return nil
	}
	if err := s.join(ctx, room); err != nil {
		return fmt.Errorf("chatclient: rejoin %s: %w", room, err)
	}
	return nil
}

// Disconnect closes the connection. It is safe to call on a closed session.
// A dial still in flight is abandoned.
func (s *Session) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	if conn == nil && s.dialing != nil {
		s.dialAbort = true
	}
	s.mu.Unlock()
	if conn == nil {
		return
	}

	s.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	s.teardown(conn)
}

// JoinRoom makes chatID the single active room, leaving the previous one.
func (s *Session) JoinRoom(ctx context.Context, chatID string) error {
	if !s.Connected() {
		return ErrNotConnected
	}
	if prev := s.Room(); prev != "" && prev != chatID {
		if err := s.LeaveRoom(ctx, prev); err != nil {
			return err
		}
	}
	return s.join(ctx, chatID)
}

func (s *Session) join(ctx context.Context, chatID string) error {
	ack, err := s.request(ctx, models.EventJoinChat, models.RoomRequest{ChatID: chatID})
	if err != nil {
		return err
	}
	if !ack.Success {
		return fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}
	s.mu.Lock()
	s.room = chatID
	s.mu.Unlock()
	return nil
}

// LeaveRoom forgets chatID as the active room and tells the server when connected.
func (s *Session) LeaveRoom(ctx context.Context, chatID string) error {
	s.mu.Lock()
	if s.room == chatID {
		s.room = ""
	}
	connected := s.conn != nil
	s.mu.Unlock()
	if !connected {
		return nil
	}

	ack, err := s.request(ctx, models.EventLeaveChat, models.RoomRequest{ChatID: chatID})
	if err != nil {
		return err
	}
	if !ack.Success {
		return fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}
	return nil
}

// SendMessage sends text to chatID and waits for the server acknowledgement.
// While disconnected it fails immediately with ErrNotConnected; nothing is queued.
func (s *Session) SendMessage(ctx context.Context, chatID, senderID, text string, meta Meta) (models.Ack, error) {
	if !s.Connected() {
		return models.Ack{Success: false, Error: ErrNotConnected.Error()}, ErrNotConnected
	}
	ack, err := s.request(ctx, models.EventSendMessage, models.SendMessageRequest{
		ChatID:   chatID,
		UserID:   senderID,
		Message:  text,
		User:     meta.User,
		ClientID: meta.ClientID,
	})
	if err != nil {
		return models.Ack{Success: false, Error: err.Error()}, err
	}
	if !ack.Success {
		return ack, fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}
	return ack, nil
}

// request writes one frame with a fresh ack id and waits for its acknowledgement.
func (s *Session) request(ctx context.Context, event string, data any) (models.Ack, error) {
	s.mu.Lock()
	conn, closed := s.conn, s.closed
	if conn == nil {
		s.mu.Unlock()
		return models.Ack{}, ErrNotConnected
	}
	s.nextAck++
	id := s.nextAck
	wait := make(chan models.Ack, 1)
	s.pending[id] = wait
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	env, err := models.NewEnvelope(event, id, data)
	if err != nil {
		return models.Ack{}, err
	}
	s.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(s.AckTimeout))
	err = conn.WriteJSON(env)
	s.writeMu.Unlock()
	if err != nil {
		s.teardown(conn)
		return models.Ack{}, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, s.AckTimeout)
	defer cancel()
	select {
	case ack := <-wait:
		return ack, nil
	case <-closed:
		return models.Ack{}, ErrNotConnected
	case <-ctx.Done():
		return models.Ack{}, ctx.Err()
	}
}

func (s *Session) readLoop(conn *websocket.Conn) {
	inbox := make(chan models.Message, 64)
	go s.dispatch(inbox)
	defer close(inbox)
	defer s.teardown(conn)

	for {
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WARNING: chat connection lost: %v", err)
			}
			return
		}

		switch env.Event {
		case models.EventAck, models.EventError:
			var ack models.Ack
			if err := json.Unmarshal(env.Data, &ack); err != nil {
				log.Printf("WARNING: bad ack frame: %v", err)
				continue
			}
			if env.AckID == 0 {
				log.Printf("WARNING: chat server error: %s", ack.Error)
				continue
			}
			s.mu.Lock()
			wait := s.pending[env.AckID]
			s.mu.Unlock()
			if wait != nil {
				select {
				case wait <- ack:
				default:
				}
			}

		case models.EventNewMessage:
			var msg models.Message
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				log.Printf("WARNING: bad newMessage frame: %v", err)
				continue
			}
			inbox <- msg
		}
	}
}

// dispatch runs message handlers off the read loop, which keeps reading acks
// for requests a handler makes.
func (s *Session) dispatch(inbox <-chan models.Message) {
	for msg := range inbox {
		s.mu.Lock()
		handlers := append([]func(models.Message){}, s.onMessage...)
		s.mu.Unlock()
		for _, h := range handlers {
			h(msg)
		}
	}
}

// teardown releases conn once, whichever of Disconnect, a failed write or the
// read loop gets there first. The remembered room survives.
func (s *Session) teardown(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	close(s.closed)
	s.mu.Unlock()

	conn.Close()
	s.emitState(StateDisconnected)
}

func (s *Session) emitState(st State) {
	s.mu.Lock()
	handlers := append([]func(State){}, s.onState...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(st)
	}
}
