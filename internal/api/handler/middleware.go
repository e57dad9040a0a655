package handler

import (
	"errors"
	"strings"

	"estatehub/backend/internal/session"
	"estatehub/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// bearerToken reads the token from the Authorization header, falling back to
// ?token= for WebSocket handshakes where browsers cannot set headers.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return c.Query("token")
}

// AuthRequired verifies the access token, rejects blocked accounts and stores
// the session.Actor in the request context.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			respondError(c, ErrUnauthorized)
			return
		}
		claims, err := h.Tokens.Verify(raw)
		if err != nil {
			respondError(c, err)
			return
		}

		user, err := h.Store.GetUserByID(c.Request.Context(), claims.Subject)
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, ErrInvalidToken)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		if user.IsBlocked {
			respondError(c, ErrBlocked)
			return
		}

		// the role is read from the database so a demotion applies immediately
		actor := session.Actor{UserID: user.ID, Role: user.Role}
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), actor))
		c.Set("user", user)
		c.Next()
	}
}

// actorOf returns the authenticated actor. Routes behind AuthRequired always have one.
func actorOf(c *gin.Context) (session.Actor, bool) {
	actor, ok := session.FromContext(c.Request.Context())
	if !ok {
		respondError(c, ErrUnauthorized)
	}
	return actor, ok
}
