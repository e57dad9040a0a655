package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"estatehub/backend/internal/config"
	"estatehub/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// WebSocketClient реалізує інтерфейс chathub.Client
type WebSocketClient struct {
	Profile models.PublicUser
	Conn    *websocket.Conn
	Hub     *ManagerService
	Send    chan models.Envelope

	roomID    string
	closeOnce sync.Once
}

// NewWebSocketClient wraps an upgraded connection for user.
func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, user models.PublicUser) *WebSocketClient {
	return &WebSocketClient{
		Profile: user,
		Conn:    conn,
		Hub:     hub,
		Send:    make(chan models.Envelope, config.ClientSendBuffer),
	}
}

// --- Реалізація методів інтерфейсу ---

func (c *WebSocketClient) GetUserID() string                      { return c.Profile.ID }
func (c *WebSocketClient) GetProfile() models.PublicUser          { return c.Profile }
func (c *WebSocketClient) GetRoomID() string                      { return c.roomID }
func (c *WebSocketClient) SetRoomID(id string)                    { c.roomID = id }
func (c *WebSocketClient) GetSendChannel() chan<- models.Envelope { return c.Send }

// Run запускає 'pumps' для WebSocket
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump)
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.Hub.UnregisterCh <- c:
		case <-c.Hub.Done():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var env models.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("Error decoding JSON from client %s: %v", c.GetUserID(), err)
			continue // Пропускаємо невірне повідомлення
		}

		select {
		case c.Hub.IncomingCh <- Inbound{Client: c, Envelope: env}:
		case <-c.Hub.Done():
			return
		}
	}
}

// writePump читає кадри з каналу Send і записує їх у WebSocket, по одному JSON на кадр.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрито хабом, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(env); err != nil {
				log.Printf("Error writing to client %s: %v", c.GetUserID(), err)
				return
			}

		case <-ticker.C:
			// Надсилаємо Ping для підтримки з'єднання активним
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
