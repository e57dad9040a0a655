// Package analysis aggregates moderation and booking counters into the metric
// cards shown on the admin dashboard.
package analysis

import (
	"context"

	"estatehub/backend/internal/models"
)

// CountSource is the subset of storage the dashboard reads.
type CountSource interface {
	CountComplaintsByStatus(ctx context.Context) (map[models.ComplaintStatus]int64, error)
	CountReservationsByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error)
}

// StatusCard is one metric card: a total and a breakdown per status.
type StatusCard struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
	Pending  int64            `json:"pending"`
	// DecidedRate is the share of entities that already left PENDING, in [0, 1].
	DecidedRate float64 `json:"decidedRate"`
}

// Dashboard is the payload of the moderation dashboard.
type Dashboard struct {
	Complaints   StatusCard `json:"complaints"`
	Reservations StatusCard `json:"reservations"`
}

// Summarize builds a StatusCard from raw per-status counts.
func Summarize[S ~string](counts map[S]int64, pending S, known []S) StatusCard {
	card := StatusCard{ByStatus: make(map[string]int64, len(known))}
	for _, s := range known {
		card.ByStatus[string(s)] = 0
	}
	for s, n := range counts {
		card.ByStatus[string(s)] += n
		card.Total += n
	}
	card.Pending = counts[pending]
	if card.Total > 0 {
		card.DecidedRate = float64(card.Total-card.Pending) / float64(card.Total)
	}
	return card
}

// BuildDashboard reads the counters and summarizes them.
func BuildDashboard(ctx context.Context, src CountSource) (*Dashboard, error) {
	complaints, err := src.CountComplaintsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := src.CountReservationsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Complaints: Summarize(complaints, models.ComplaintPending, []models.ComplaintStatus{
			models.ComplaintPending, models.ComplaintResolved, models.ComplaintRejected,
		}),
		Reservations: Summarize(reservations, models.ReservationPending, []models.ReservationStatus{
			models.ReservationPending, models.ReservationConfirmed, models.ReservationCancelled,
		}),
	}, nil
}
