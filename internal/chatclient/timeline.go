package chatclient

import (
	"sync"
	"time"

	"estatehub/backend/internal/models"
)

// Timeline is the ordered message list of one open conversation. Entries are
// kept in arrival order; a server message replaces the optimistic entry with
// the same client id, and a message id is never rendered twice.
type Timeline struct {
	mu    sync.Mutex
	items []models.Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// LoadHistory puts history in front of anything that arrived live.
// Live messages that history already contains are dropped.
func (t *Timeline) LoadHistory(history []models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool, len(history))
	merged := make([]models.Message, 0, len(history)+len(t.items))
	for _, m := range history {
		if m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
	}
	for _, m := range t.items {
		if m.ID != "" && seen[m.ID] {
			continue
		}
		merged = append(merged, m)
	}
	t.items = merged
}

// AddPending appends an optimistic local message that has no server id yet.
func (t *Timeline) AddPending(clientID, chatID string, sender models.PublicUser, text string, at time.Time) models.Message {
	m := models.Message{
		ChatID:   chatID,
		UserID:   sender.ID,
		Text:     text,
		SentAt:   at,
		ClientID: clientID,
		Sender:   &sender,
	}
	t.mu.Lock()
	t.items = append(t.items, m)
	t.mu.Unlock()
	return m
}

// Receive applies a message from the server and reports whether the list changed.
func (t *Timeline) Receive(m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := -1
	if m.ClientID != "" {
		for i, existing := range t.items {
			if existing.ID == "" && existing.ClientID == m.ClientID {
				pending = i
				break
			}
		}
	}
	for _, existing := range t.items {
		if existing.ID != "" && existing.ID == m.ID {
			// Already rendered, e.g. by a history reload that raced the echo.
			if pending < 0 {
				return false
			}
			t.items = append(t.items[:pending], t.items[pending+1:]...)
			return true
		}
	}
	if pending >= 0 {
		t.items[pending] = m
		return true
	}
	t.items = append(t.items, m)
	return true
}

// Fail removes the optimistic entry of a send the server did not accept.
func (t *Timeline) Fail(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, existing := range t.items {
		if existing.ID == "" && existing.ClientID == clientID {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

// Messages returns a snapshot of the list.
func (t *Timeline) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Message(nil), t.items...)
}

// Pending reports whether clientID is still waiting for its server echo.
func (t *Timeline) Pending(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.items {
		if m.ID == "" && m.ClientID == clientID {
			return true
		}
	}
	return false
}
