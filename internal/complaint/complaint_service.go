// Package complaint provides the moderation flow for complaints about posts:
// reporting, the admin queue and the PENDING -> RESOLVED/REJECTED decisions.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"estatehub/backend/internal/analysis"
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
	ErrForbidden     = errors.New("complaint: not allowed for this user")
	ErrInvalidReason = errors.New("complaint: unknown reason")
	ErrInvalidStatus = errors.New("complaint: unknown status")
	ErrDuplicate     = errors.New("complaint: you already have an open complaint about this post")
)

// Store is the storage subset the service needs.
type Store interface {
	analysis.CountSource
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, f storage.ComplaintFilter) ([]models.Complaint, int64, error)
	UpdateComplaintStatus(ctx context.Context, id string, from, to models.ComplaintStatus) (*models.Complaint, error)
}

// Service handles the business logic for complaints.
type Service struct {
	Store     Store
	Notifier  telegram.Notifier
	Localizer *localization.Localizer
}

// NewService creates a new complaint service.
func NewService(s Store, n telegram.Notifier, l *localization.Localizer) *Service {
	return &Service{Store: s, Notifier: n, Localizer: l}
}

// CreateInput is the body of a new complaint.
type CreateInput struct {
	Reason      string  `json:"reason" binding:"required"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// Create files a complaint from the actor about postID.
func (s *Service) Create(ctx context.Context, actor session.Actor, postID string, in CreateInput) (*models.Complaint, error) {
	reason := strings.ToUpper(strings.TrimSpace(in.Reason))
	if !config.IsComplaintReason(reason) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReason, in.Reason)
	}

	post, err := s.Store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID == actor.UserID {
		return nil, fmt.Errorf("%w: cannot report your own post", ErrForbidden)
	}

	_, open, err := s.Store.ListComplaints(ctx, storage.ComplaintFilter{
		UserID: actor.UserID,
		PostID: post.ID,
		Status: models.ComplaintPending,
		Page:   1,
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, ErrDuplicate
	}

	c := &models.Complaint{
		PostID: post.ID,
		UserID: actor.UserID,
		Reason: reason,
		Status: models.ComplaintPending,
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			c.Description = &d
		}
	}
	if err := s.Store.CreateComplaint(ctx, c); err != nil {
		return nil, err
	}
	c.Post = post
	log.Printf("INFO: Complaint %s filed by %s on post %s (%s).", c.ID, actor.UserID, post.ID, reason)
	return c, nil
}

// List returns the moderation queue for admins and the actor's own complaints otherwise.
func (s *Service) List(ctx context.Context, actor session.Actor, status models.ComplaintStatus, page, limit int) (listing.Page[models.Complaint], error) {
	if status != "" && !workflow.Complaints.Known(status) {
		return listing.Page[models.Complaint]{}, ErrInvalidStatus
	}
	page, limit = listing.Paginate(page, limit)
	f := storage.ComplaintFilter{Status: status, Page: page, Limit: limit}
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}

	items, total, err := s.Store.ListComplaints(ctx, f)
	if err != nil {
		return listing.Page[models.Complaint]{}, err
	}
	if items == nil {
		items = []models.Complaint{}
	}
	return listing.Page[models.Complaint]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Get returns a complaint visible to the actor (reporter or admin).
func (s *Service) Get(ctx context.Context, actor session.Actor, id string) (*models.Complaint, error) {
	c, err := s.Store.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && c.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return c, nil
}

// Actions lists the statuses the actor may move c to.
func Actions(actor session.Actor, c *models.Complaint) []models.ComplaintStatus {
	if !actor.IsAdmin() {
		return nil
	}
	return workflow.Complaints.Next(c.Status)
}

// Transition records an admin decision on the complaint.
func (s *Service) Transition(ctx context.Context, actor session.Actor, id string, next models.ComplaintStatus) (*models.Complaint, error) {
	if !workflow.Complaints.Known(next) {
		return nil, ErrInvalidStatus
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	c, err := s.Store.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Complaints.Check(c.Status, next); err != nil {
		return nil, err
	}

	updated, err := s.Store.UpdateComplaintStatus(ctx, id, c.Status, next)
	if errors.Is(err, storage.ErrStaleStatus) {
		return nil, fmt.Errorf("%w: complaint is no longer %s", workflow.ErrInvalidTransition, c.Status)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Complaint %s moved %s -> %s by admin %s.", id, c.Status, next, actor.UserID)

	s.notifyReporter(ctx, updated)
	return updated, nil
}

// Dashboard returns the moderation metric cards. Admin only.
func (s *Service) Dashboard(ctx context.Context, actor session.Actor) (*analysis.Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return analysis.BuildDashboard(ctx, s.Store)
}

func (s *Service) notifyReporter(ctx context.Context, c *models.Complaint) {
	if s.Notifier == nil {
		return
	}
	reporter, err := s.Store.GetUserByID(ctx, c.UserID)
	if err != nil {
		log.Printf("WARNING: Cannot load reporter %s: %v", c.UserID, err)
		return
	}
	title := ""
	if c.Post != nil {
		title = c.Post.Title
	}
	label := s.Localizer.StatusLabel(localization.DefaultLanguage, "complaint", string(c.Status))
	text := s.Localizer.Format(localization.DefaultLanguage, "notify.complaint.status", title, label)
	if err := s.Notifier.Notify(ctx, reporter, text); err != nil {
		log.Printf("WARNING: Notification to %s failed: %v", reporter.ID, err)
	}
}
