package chatclient

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"estatehub/backend/internal/models"

	"github.com/google/uuid"
)

// View binds one conversation to a Session and renders it into a Timeline.
type View struct {
	ChatID   string
	Me       models.PublicUser
	Session  *Session
	Timeline *Timeline
	History  HistoryLoader
	Reads    ReadMarker

	// OnChange, when set, is called after every change of the timeline.
	OnChange func([]models.Message)
	Now      func() time.Time

	mu         sync.Mutex
	markedRead bool
}

// NewView creates a view of chatID for the user me.
func NewView(chatID string, me models.PublicUser, s *Session, api interface {
	HistoryLoader
	ReadMarker
}) *View {
	v := &View{
		ChatID:   chatID,
		Me:       me,
		Session:  s,
		Timeline: NewTimeline(),
		History:  api,
		Reads:    api,
		Now:      time.Now,
	}
	s.OnMessage(v.receive)
	return v
}

func (v *View) receive(m models.Message) {
	if m.ChatID != v.ChatID {
		return
	}
	if v.Timeline.Receive(m) {
		v.changed()
	}
}

func (v *View) changed() {
	if v.OnChange != nil {
		v.OnChange(v.Timeline.Messages())
	}
}

// Open connects, joins the room and loads history. Messages are marked read
// once per view, on the first successful open.
func (v *View) Open(ctx context.Context) error {
	if err := v.Session.Connect(ctx); err != nil {
		return err
	}
	if err := v.Session.JoinRoom(ctx, v.ChatID); err != nil {
		return err
	}
	if err := v.reload(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	mark := !v.markedRead
	v.markedRead = true
	v.mu.Unlock()
	if mark {
		if err := v.Reads.MarkRead(ctx, v.ChatID); err != nil {
			// not fatal for rendering
			log.Printf("WARNING: failed to mark chat %s read: %v", v.ChatID, err)
		}
	}
	return nil
}

// Resume reconnects after a connection loss. The session rejoins the room and
// history is merged again to pick up anything missed while offline.
func (v *View) Resume(ctx context.Context) error {
	if err := v.Session.Connect(ctx); err != nil {
		return err
	}
	return v.reload(ctx)
}

func (v *View) reload(ctx context.Context) error {
	history, err := v.History.Messages(ctx, v.ChatID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	v.Timeline.LoadHistory(history)
	v.changed()
	return nil
}

// Send shows text immediately and sends it. On failure the optimistic entry is
// removed and the error returned; there is no retry.
func (v *View) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	clientID := uuid.NewString()
	v.Timeline.AddPending(clientID, v.ChatID, v.Me, text, v.Now())
	v.changed()

	_, err := v.Session.SendMessage(ctx, v.ChatID, v.Me.ID, text, Meta{User: v.Me, ClientID: clientID})
	if err != nil {
		if v.Timeline.Fail(clientID) {
			v.changed()
		}
		return err
	}
	return nil
}

// Close leaves the room and drops the connection.
func (v *View) Close(ctx context.Context) {
	if err := v.Session.LeaveRoom(ctx, v.ChatID); err != nil {
		log.Printf("WARNING: failed to leave chat %s: %v", v.ChatID, err)
	}
	v.Session.Disconnect()
}
