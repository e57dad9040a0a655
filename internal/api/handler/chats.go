package handler

import (
	"fmt"
	"net/http"

	"estatehub/backend/internal/config"
	"estatehub/backend/internal/models"
	"estatehub/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type createChatInput struct {
	ParticipantID string `json:"participantId" binding:"required"`
}

// CreateChat returns the direct conversation with another user, creating it on first contact.
func (h *Handler) CreateChat(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in createChatInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}
	if in.ParticipantID == actor.UserID {
		respondError(c, fmt.Errorf("%w: cannot start a chat with yourself", ErrBadRequest))
		return
	}
	if _, err := h.Store.GetUserByID(c.Request.Context(), in.ParticipantID); err != nil {
		respondError(c, err)
		return
	}

	chat, err := h.Store.GetOrCreateDirectChat(c.Request.Context(), actor.UserID, in.ParticipantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) ListChats(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	chats, err := h.Store.ListChatsForUser(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if chats == nil {
		chats = []models.ChatSummary{}
	}
	c.JSON(http.StatusOK, chats)
}

// participant aborts with 404 unless the actor belongs to the chat in the path.
func (h *Handler) participant(c *gin.Context) (string, bool) {
	actor, ok := actorOf(c)
	if !ok {
		return "", false
	}
	chatID := c.Param("id")
	member, err := h.Store.IsChatParticipant(c.Request.Context(), chatID, actor.UserID)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	if !member {
		// not leaking which chats exist
		respondError(c, storage.ErrNotFound)
		return "", false
	}
	return actor.UserID, true
}

// ChatMessages returns the history of a chat, oldest first.
func (h *Handler) ChatMessages(c *gin.Context) {
	if _, ok := h.participant(c); !ok {
		return
	}
	limit := queryInt(c, "limit")
	if limit <= 0 || limit > config.ChatHistoryLimit {
		limit = config.ChatHistoryLimit
	}
	msgs, err := h.Store.GetMessages(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// MarkChatRead marks every message from the other participants as read.
func (h *Handler) MarkChatRead(c *gin.Context) {
	userID, ok := h.participant(c)
	if !ok {
		return
	}
	n, err := h.Store.MarkChatRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
