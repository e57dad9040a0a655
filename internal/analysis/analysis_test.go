package analysis_test

import (
	"context"
	"errors"
	"estatehub/backend/internal/analysis"
	"estatehub/backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounts struct {
	complaints   map[models.ComplaintStatus]int64
	reservations map[models.ReservationStatus]int64
	err          error
}

func (f fakeCounts) CountComplaintsByStatus(ctx context.Context) (map[models.ComplaintStatus]int64, error) {
	return f.complaints, f.err
}

func (f fakeCounts) CountReservationsByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error) {
	return f.reservations, f.err
}

func TestBuildDashboard(t *testing.T) {
	src := fakeCounts{
		complaints: map[models.ComplaintStatus]int64{
			models.ComplaintPending:  2,
			models.ComplaintRejected: 6,
		},
		reservations: map[models.ReservationStatus]int64{},
	}

	d, err := analysis.BuildDashboard(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, int64(8), d.Complaints.Total)
	assert.Equal(t, int64(2), d.Complaints.Pending)
	assert.InDelta(t, 0.75, d.Complaints.DecidedRate, 1e-9)
	assert.Equal(t, int64(0), d.Complaints.ByStatus["RESOLVED"], "known statuses are always present")

	assert.Equal(t, int64(0), d.Reservations.Total)
	assert.Zero(t, d.Reservations.DecidedRate)
	assert.Len(t, d.Reservations.ByStatus, 3)
}

func TestBuildDashboard_Error(t *testing.T) {
	_, err := analysis.BuildDashboard(context.Background(), fakeCounts{err: errors.New("db down")})
	assert.Error(t, err)
}
