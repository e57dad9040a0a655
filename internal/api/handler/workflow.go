package handler

import (
	"net/http"

	"estatehub/backend/internal/complaint"
	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/models"
	"estatehub/backend/internal/reservation"
	"estatehub/backend/internal/session"

	"github.com/gin-gonic/gin"
)

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

// reservationView is a reservation as seen by one actor: the next statuses it
// may pick and the localized badge of the current one.
type reservationView struct {
	*models.Reservation
	Actions     []models.ReservationStatus `json:"actions"`
	StatusLabel string                     `json:"statusLabel"`
}

type complaintView struct {
	*models.Complaint
	Actions     []models.ComplaintStatus `json:"actions"`
	StatusLabel string                   `json:"statusLabel"`
}

func (h *Handler) reservationView(c *gin.Context, actor session.Actor, r *models.Reservation) reservationView {
	actions := reservation.Actions(actor, r)
	if actions == nil {
		actions = []models.ReservationStatus{}
	}
	return reservationView{
		Reservation: r,
		Actions:     actions,
		StatusLabel: h.Localizer.StatusLabel(h.language(c), "reservation", string(r.Status)),
	}
}

func (h *Handler) complaintView(c *gin.Context, actor session.Actor, cm *models.Complaint) complaintView {
	actions := complaint.Actions(actor, cm)
	if actions == nil {
		actions = []models.ComplaintStatus{}
	}
	return complaintView{
		Complaint:   cm,
		Actions:     actions,
		StatusLabel: h.Localizer.StatusLabel(h.language(c), "complaint", string(cm.Status)),
	}
}

// --- Reservations ---

func (h *Handler) CreateReservation(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in reservation.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}
	r, err := h.Reservations.Create(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.reservationView(c, actor, r))
}

// ListReservations handles GET /reservations?scope=mine|incoming&status=&page=&limit=.
func (h *Handler) ListReservations(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	scope := reservation.Scope(c.DefaultQuery("scope", string(reservation.ScopeMine)))
	if scope != reservation.ScopeMine && scope != reservation.ScopeIncoming {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "scope must be mine or incoming"})
		return
	}

	page, err := h.Reservations.List(c.Request.Context(), actor, scope,
		models.ReservationStatus(c.Query("status")), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]reservationView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, h.reservationView(c, actor, &page.Items[i]))
	}
	c.JSON(http.StatusOK, listing.Page[reservationView]{Items: views, Total: page.Total, Page: page.Page, Limit: page.Limit})
}

func (h *Handler) GetReservation(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	r, err := h.Reservations.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.reservationView(c, actor, r))
}

// UpdateReservationStatus handles PATCH /reservations/:id {status}.
func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}
	r, err := h.Reservations.Transition(c.Request.Context(), actor, c.Param("id"), models.ReservationStatus(in.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.reservationView(c, actor, r))
}

// --- Complaints ---

func (h *Handler) CreateComplaint(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in complaint.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}
	cm, err := h.Complaints.Create(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.complaintView(c, actor, cm))
}

// ListComplaints is the moderation queue for admins and "my complaints" for everyone else.
func (h *Handler) ListComplaints(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	page, err := h.Complaints.List(c.Request.Context(), actor,
		models.ComplaintStatus(c.Query("status")), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]complaintView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, h.complaintView(c, actor, &page.Items[i]))
	}
	c.JSON(http.StatusOK, listing.Page[complaintView]{Items: views, Total: page.Total, Page: page.Page, Limit: page.Limit})
}

func (h *Handler) GetComplaint(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	cm, err := h.Complaints.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.complaintView(c, actor, cm))
}

// UpdateComplaintStatus handles PATCH /complaints/:id {status}. Admin only.
func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}
	cm, err := h.Complaints.Transition(c.Request.Context(), actor, c.Param("id"), models.ComplaintStatus(in.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.complaintView(c, actor, cm))
}

// ComplaintStats returns the dashboard metric cards.
func (h *Handler) ComplaintStats(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	d, err := h.Complaints.Dashboard(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
