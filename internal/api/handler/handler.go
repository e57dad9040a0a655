// Package handler is the HTTP surface of the marketplace: gin handlers for
// auth, listings, chats and the reservation/complaint workflows, plus the
// chat WebSocket endpoint.
package handler

import (
	"net/http"
	"strconv"

	"estatehub/backend/internal/chathub"
	"estatehub/backend/internal/complaint"
	"estatehub/backend/internal/localization"
	"estatehub/backend/internal/reservation"
	"estatehub/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler містить залежності HTTP-шару
type Handler struct {
	Store        storage.Storage
	Hub          *chathub.ManagerService
	Reservations *reservation.Service
	Complaints   *complaint.Service
	Localizer    *localization.Localizer
	Tokens       *Tokens
	// TelegramBot is the bot username used to build deep links; empty disables linking.
	TelegramBot string

	upgrader websocket.Upgrader
}

// Options configures NewHandler.
type Options struct {
	AllowedOrigins []string
	TelegramBot    string
}

func NewHandler(s storage.Storage, hub *chathub.ManagerService, rs *reservation.Service, cs *complaint.Service,
	l *localization.Localizer, tokens *Tokens, opts Options) *Handler {
	useJSONFieldNames()
	return &Handler{
		Store:        s,
		Hub:          hub,
		Reservations: rs,
		Complaints:   cs,
		Localizer:    l,
		Tokens:       tokens,
		TelegramBot:  opts.TelegramBot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/auth/register", h.RegisterUser)
	r.POST("/auth/login", h.Login)

	// public browsing
	r.GET("/posts", h.SearchPosts)
	r.GET("/posts/map", h.MapPosts)
	r.GET("/posts/:id", h.GetPost)
	r.GET("/users/:id", h.GetUserProfile)
	r.GET("/users/:id/presence", h.GetPresence)

	// the socket carries its token in the query string
	r.GET("/ws", h.AuthRequired(), h.ServeWebSocket)

	auth := r.Group("/", h.AuthRequired())
	auth.POST("/posts", h.CreatePost)
	auth.PATCH("/posts/:id", h.UpdatePost)
	auth.DELETE("/posts/:id", h.DeletePost)
	auth.POST("/posts/:id/favorite", h.ToggleFavorite)
	auth.GET("/favorites", h.ListFavorites)

	auth.GET("/users/me", h.GetMe)
	auth.PATCH("/users/me", h.UpdateMe)
	auth.POST("/users/me/telegram-link", h.TelegramLink)

	auth.POST("/chats", h.CreateChat)
	auth.GET("/chats", h.ListChats)
	auth.GET("/chats/:id/messages", h.ChatMessages)
	auth.POST("/chats/:id/read", h.MarkChatRead)

	auth.POST("/posts/:id/reservations", h.CreateReservation)
	auth.GET("/reservations", h.ListReservations)
	auth.GET("/reservations/:id", h.GetReservation)
	auth.PATCH("/reservations/:id", h.UpdateReservationStatus)

	auth.POST("/posts/:id/complaints", h.CreateComplaint)
	auth.GET("/complaints", h.ListComplaints)
	auth.GET("/complaints/stats", h.ComplaintStats)
	auth.GET("/complaints/:id", h.GetComplaint)
	auth.PATCH("/complaints/:id", h.UpdateComplaintStatus)
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin] || set["*"]
	}
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// language picks the badge language from ?lang= or Accept-Language.
func (h *Handler) language(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	return h.Localizer.Language(c.GetHeader("Accept-Language"))
}
