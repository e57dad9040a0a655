package handler

import (
	"net/http"
	"strings"

	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type profilePatch struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=100"`
	Image *string `json:"image" binding:"omitempty,url"`
	Phone *string `json:"phone" binding:"omitempty,e164"`
}

func (h *Handler) currentUser(c *gin.Context) (*models.User, bool) {
	actor, ok := actorOf(c)
	if !ok {
		return nil, false
	}
	user, err := h.Store.GetUserByID(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

func (h *Handler) GetMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "telegramLinked": user.TelegramChatID != nil})
}

func (h *Handler) UpdateMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var in profilePatch
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Image != nil {
		user.Image = *in.Image
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if err := h.Store.UpdateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "telegramLinked": user.TelegramChatID != nil})
}

// GetUserProfile returns the public card of a user and their latest posts.
func (h *Handler) GetUserProfile(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	q := listing.Query{OwnerID: user.ID, Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}
	if err := q.Normalize(); err != nil {
		respondError(c, err)
		return
	}
	posts, total, err := h.Store.SearchPosts(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	c.JSON(http.StatusOK, gin.H{
		"user":  user.Public(),
		"posts": listing.Page[models.Post]{Items: posts, Total: total, Page: q.Page, Limit: q.Limit},
	})
}

func (h *Handler) GetPresence(c *gin.Context) {
	online, err := h.Store.IsOnline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": c.Param("id"), "online": online})
}
