package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"estatehub/backend/internal/models"
	"estatehub/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid email or password")

type registerInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterUser створює акаунт та повертає JWT
func (h *Handler) RegisterUser(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			err = fmt.Errorf("%w: email is already registered", storage.ErrConflict)
		}
		respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login перевіряє пароль та повертає JWT
func (h *Handler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.Store.GetUserByEmail(c.Request.Context(), in.Email)
	if errors.Is(err, storage.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": ErrBadCredentials.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": ErrBadCredentials.Error()})
		return
	}
	if user.IsBlocked {
		respondError(c, ErrBlocked)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.Issue(user)
	if err != nil {
		respondError(c, fmt.Errorf("failed to create token: %w", err))
		return
	}
	c.JSON(status, authResponse{Token: token, User: user})
}

// TelegramLink returns a one-time command that connects the bot to the caller's
// account. The token does not fit Telegram's deep-link payload limit, so the user
// sends it to the bot as "/start <token>".
func (h *Handler) TelegramLink(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	if h.TelegramBot == "" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "telegram notifications are not configured"})
		return
	}
	token, err := h.Tokens.IssueTelegramLink(actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"command": "/start " + token,
		"url":     "https://t.me/" + h.TelegramBot,
	})
}
