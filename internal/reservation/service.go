// Package reservation implements booking requests against rental posts and
// their PENDING -> CONFIRMED/CANCELLED lifecycle.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"estatehub/backend/internal/config"
	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/localization"
	"estatehub/backend/internal/models"
	"estatehub/backend/internal/session"
	"estatehub/backend/internal/storage"
	"estatehub/backend/internal/telegram"
	"estatehub/backend/internal/workflow"
)

var (
	ErrForbidden     = errors.New("reservation: not allowed for this user")
	ErrNotRentable   = errors.New("reservation: post is not for rent")
	ErrInvalidDates  = errors.New("reservation: invalid date range")
	ErrUnavailable   = errors.New("reservation: post is not available for the selected dates")
	ErrInvalidStatus = errors.New("reservation: unknown status")
)

// Store is the storage subset the service needs.
type Store interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservations(ctx context.Context, f storage.ReservationFilter) ([]models.Reservation, int64, error)
	UpdateReservationStatus(ctx context.Context, id string, from, to models.ReservationStatus) (*models.Reservation, error)
}

// Service handles the business logic for reservations.
type Service struct {
	Store     Store
	Notifier  telegram.Notifier
	Localizer *localization.Localizer
	Now       func() time.Time
}

// NewService creates a new reservation service.
func NewService(s Store, n telegram.Notifier, l *localization.Localizer) *Service {
	return &Service{Store: s, Notifier: n, Localizer: l, Now: time.Now}
}

// CreateInput is the booking request body.
type CreateInput struct {
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// Scope selects which side of the reservations the actor is looking at.
type Scope string

const (
	ScopeMine     Scope = "mine"
	ScopeIncoming Scope = "incoming"
)

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create books postID for the actor. Dates are truncated to whole UTC days.
func (s *Service) Create(ctx context.Context, actor session.Actor, postID string, in CreateInput) (*models.Reservation, error) {
	post, err := s.Store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.ListingType != models.ListingRent {
		return nil, ErrNotRentable
	}
	if post.OwnerID == actor.UserID {
		return nil, fmt.Errorf("%w: cannot book your own post", ErrForbidden)
	}

	start, end := day(in.StartDate), day(in.EndDate)
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start date must be before end date", ErrInvalidDates)
	}
	if start.Before(day(s.Now())) {
		return nil, fmt.Errorf("%w: start date must not be in the past", ErrInvalidDates)
	}

	r := &models.Reservation{
		PostID:    post.ID,
		UserID:    actor.UserID,
		StartDate: start,
		EndDate:   end,
		Status:    models.ReservationPending,
	}
	nights := r.Nights()
	if nights > config.MaxReservationNights {
		return nil, fmt.Errorf("%w: at most %d nights", ErrInvalidDates, config.MaxReservationNights)
	}
	r.TotalPrice = float64(nights) * post.Price

	if err := s.Store.CreateReservation(ctx, r); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUnavailable
		}
		return nil, err
	}
	r.Post = post

	s.notify(ctx, post.OwnerID, s.Localizer.Format(localization.DefaultLanguage, "notify.reservation.created",
		post.Title, start.Format("02.01.2006"), end.Format("02.01.2006")))
	return r, nil
}

// Get returns a reservation visible to the actor (renter or post owner).
func (s *Service) Get(ctx context.Context, actor session.Actor, id string) (*models.Reservation, error) {
	r, err := s.Store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isRenter(actor, r) && !isOwner(actor, r) {
		return nil, ErrForbidden
	}
	return r, nil
}

// List returns one page of the actor's reservations on the requested side.
func (s *Service) List(ctx context.Context, actor session.Actor, scope Scope, status models.ReservationStatus, page, limit int) (listing.Page[models.Reservation], error) {
	if status != "" && !workflow.Reservations.Known(status) {
		return listing.Page[models.Reservation]{}, ErrInvalidStatus
	}
	page, limit = listing.Paginate(page, limit)
	f := storage.ReservationFilter{Status: status, Page: page, Limit: limit}
	if scope == ScopeIncoming {
		f.OwnerID = actor.UserID
	} else {
		f.UserID = actor.UserID
	}

	items, total, err := s.Store.ListReservations(ctx, f)
	if err != nil {
		return listing.Page[models.Reservation]{}, err
	}
	if items == nil {
		items = []models.Reservation{}
	}
	return listing.Page[models.Reservation]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Actions lists the statuses the actor may move r to. Terminal reservations have none.
func Actions(actor session.Actor, r *models.Reservation) []models.ReservationStatus {
	next := workflow.Reservations.Next(r.Status)
	switch {
	case isOwner(actor, r):
		return next
	case isRenter(actor, r):
		var out []models.ReservationStatus
		for _, s := range next {
			if s == models.ReservationCancelled {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Transition moves the reservation to next on behalf of the actor. The owner may
// confirm or cancel; the renter may only cancel.
func (s *Service) Transition(ctx context.Context, actor session.Actor, id string, next models.ReservationStatus) (*models.Reservation, error) {
	if !workflow.Reservations.Known(next) {
		return nil, ErrInvalidStatus
	}
	r, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Reservations.Check(r.Status, next); err != nil {
		return nil, err
	}
	if !containsStatus(Actions(actor, r), next) {
		return nil, ErrForbidden
	}

	updated, err := s.Store.UpdateReservationStatus(ctx, id, r.Status, next)
	if errors.Is(err, storage.ErrStaleStatus) {
		return nil, fmt.Errorf("%w: reservation is no longer %s", workflow.ErrInvalidTransition, r.Status)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Reservation %s moved %s -> %s by %s.", id, r.Status, next, actor.UserID)

	title := ""
	if updated.Post != nil {
		title = updated.Post.Title
	}
	label := s.Localizer.StatusLabel(localization.DefaultLanguage, "reservation", string(next))
	counterpart := updated.UserID
	if isRenter(actor, updated) && updated.Post != nil {
		counterpart = updated.Post.OwnerID
	}
	s.notify(ctx, counterpart, s.Localizer.Format(localization.DefaultLanguage, "notify.reservation.status", title, label))
	return updated, nil
}

func (s *Service) notify(ctx context.Context, userID, text string) {
	if s.Notifier == nil || userID == "" {
		return
	}
	user, err := s.Store.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("WARNING: Cannot load user %s for notification: %v", userID, err)
		return
	}
	if err := s.Notifier.Notify(ctx, user, text); err != nil {
		log.Printf("WARNING: Notification to %s failed: %v", userID, err)
	}
}

func isOwner(actor session.Actor, r *models.Reservation) bool {
	return r.Post != nil && r.Post.OwnerID == actor.UserID
}

func isRenter(actor session.Actor, r *models.Reservation) bool {
	return r.UserID == actor.UserID
}

func containsStatus(list []models.ReservationStatus, s models.ReservationStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
