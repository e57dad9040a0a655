package complaint_test

import (
	"context"
	"testing"

	"estatehub/backend/internal/complaint"
	"estatehub/backend/internal/localization"
	"estatehub/backend/internal/models"
	"estatehub/backend/internal/session"
	"estatehub/backend/internal/storage"
	"estatehub/backend/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CountComplaintsByStatus(ctx context.Context) (map[models.ComplaintStatus]int64, error) {
	args := m.Called()
	return args.Get(0).(map[models.ComplaintStatus]int64), args.Error(1)
}

func (m *MockStore) CountReservationsByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error) {
	args := m.Called()
	return args.Get(0).(map[models.ReservationStatus]int64), args.Error(1)
}

func (m *MockStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	return m.Called(c).Error(0)
}

func (m *MockStore) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStore) ListComplaints(ctx context.Context, f storage.ComplaintFilter) ([]models.Complaint, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Complaint), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) UpdateComplaintStatus(ctx context.Context, id string, from, to models.ComplaintStatus) (*models.Complaint, error) {
	args := m.Called(id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

type recordingNotifier struct {
	texts map[string]string
}

func (n *recordingNotifier) Notify(ctx context.Context, user *models.User, text string) error {
	n.texts[user.ID] = text
	return nil
}

var (
	admin    = session.Actor{UserID: "admin", Role: models.RoleAdmin}
	reporter = session.Actor{UserID: "reporter", Role: models.RoleUser}
)

func newService(t *testing.T, store *MockStore) (*complaint.Service, *recordingNotifier) {
	t.Helper()
	l, err := localization.NewLocalizer()
	require.NoError(t, err)
	n := &recordingNotifier{texts: map[string]string{}}
	return complaint.NewService(store, n, l), n
}

func post() *models.Post {
	return &models.Post{ID: "p1", OwnerID: "owner", Title: "Дом у озера"}
}

func pending() *models.Complaint {
	return &models.Complaint{ID: "c1", PostID: "p1", UserID: "reporter", Reason: "FRAUD", Status: models.ComplaintPending, Post: post()}
}

func openFilter() storage.ComplaintFilter {
	return storage.ComplaintFilter{UserID: "reporter", PostID: "p1", Status: models.ComplaintPending, Page: 1, Limit: 1}
}

func TestCreate_Success(t *testing.T) {
	store := new(MockStore)
	svc, _ := newService(t, store)
	desc := "  price is fake  "
	store.On("GetPost", "p1").Return(post(), nil)
	store.On("ListComplaints", openFilter()).Return([]models.Complaint{}, int64(0), nil)
	store.On("CreateComplaint", mock.MatchedBy(func(c *models.Complaint) bool {
		return c.Reason == "WRONG_PRICE" && c.Status == models.ComplaintPending && *c.Description == "price is fake"
	})).Return(nil)

	c, err := svc.Create(context.Background(), reporter, "p1", complaint.CreateInput{Reason: "wrong_price", Description: &desc})

	require.NoError(t, err)
	assert.Equal(t, "reporter", c.UserID)
	store.AssertExpectations(t)
}

func TestCreate_BlankDescriptionIsDropped(t *testing.T) {
	store := new(MockStore)
	svc, _ := newService(t, store)
	blank := "   "
	store.On("GetPost", "p1").Return(post(), nil)
	store.On("ListComplaints", openFilter()).Return([]models.Complaint{}, int64(0), nil)
	store.On("CreateComplaint", mock.Anything).Return(nil)

	c, err := svc.Create(context.Background(), reporter, "p1", complaint.CreateInput{Reason: "OTHER", Description: &blank})

	require.NoError(t, err)
	assert.Nil(t, c.Description)
}

func TestCreate_Rejections(t *testing.T) {
	t.Run("unknown reason", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)

		_, err := svc.Create(context.Background(), reporter, "p1", complaint.CreateInput{Reason: "BORED"})

		assert.ErrorIs(t, err, complaint.ErrInvalidReason)
		store.AssertNotCalled(t, "GetPost", mock.Anything)
	})

	t.Run("own post", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)
		store.On("GetPost", "p1").Return(post(), nil)

		_, err := svc.Create(context.Background(), session.Actor{UserID: "owner"}, "p1", complaint.CreateInput{Reason: "FRAUD"})

		assert.ErrorIs(t, err, complaint.ErrForbidden)
	})

	t.Run("missing post", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)
		store.On("GetPost", "p1").Return(nil, storage.ErrNotFound)

		_, err := svc.Create(context.Background(), reporter, "p1", complaint.CreateInput{Reason: "FRAUD"})

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("already open", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)
		store.On("GetPost", "p1").Return(post(), nil)
		store.On("ListComplaints", openFilter()).Return([]models.Complaint{*pending()}, int64(1), nil)

		_, err := svc.Create(context.Background(), reporter, "p1", complaint.CreateInput{Reason: "FRAUD"})

		assert.ErrorIs(t, err, complaint.ErrDuplicate)
		store.AssertNotCalled(t, "CreateComplaint", mock.Anything)
	})
}

func TestList_ScopesNonAdminsToOwnComplaints(t *testing.T) {
	store := new(MockStore)
	svc, _ := newService(t, store)
	store.On("ListComplaints", storage.ComplaintFilter{UserID: "reporter", Page: 1, Limit: 20}).
		Return([]models.Complaint{}, int64(0), nil)
	store.On("ListComplaints", storage.ComplaintFilter{Status: models.ComplaintRejected, Page: 2, Limit: 5}).
		Return([]models.Complaint{*pending()}, int64(6), nil)

	mine, err := svc.List(context.Background(), reporter, "", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, mine.Items)

	queue, err := svc.List(context.Background(), admin, models.ComplaintRejected, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), queue.Total)
	assert.Equal(t, 2, queue.Page)

	_, err = svc.List(context.Background(), admin, "CLOSED", 1, 5)
	assert.ErrorIs(t, err, complaint.ErrInvalidStatus)
}

func TestActions(t *testing.T) {
	c := pending()
	assert.Equal(t, []models.ComplaintStatus{models.ComplaintResolved, models.ComplaintRejected}, complaint.Actions(admin, c))
	assert.Empty(t, complaint.Actions(reporter, c))

	c.Status = models.ComplaintRejected
	assert.Empty(t, complaint.Actions(admin, c))
}

func TestTransition_AdminRejectsAndReporterIsNotified(t *testing.T) {
	store := new(MockStore)
	svc, notifier := newService(t, store)
	rejected := pending()
	rejected.Status = models.ComplaintRejected
	store.On("GetComplaint", "c1").Return(pending(), nil)
	store.On("UpdateComplaintStatus", "c1", models.ComplaintPending, models.ComplaintRejected).Return(rejected, nil)
	store.On("GetUserByID", "reporter").Return(&models.User{ID: "reporter"}, nil)

	got, err := svc.Transition(context.Background(), admin, "c1", models.ComplaintRejected)

	require.NoError(t, err)
	assert.Equal(t, models.ComplaintRejected, got.Status)
	assert.Contains(t, notifier.texts["reporter"], "Отклонено")
}

func TestTransition_Guards(t *testing.T) {
	t.Run("non-admin", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)

		_, err := svc.Transition(context.Background(), reporter, "c1", models.ComplaintResolved)

		assert.ErrorIs(t, err, complaint.ErrForbidden)
		store.AssertNotCalled(t, "GetComplaint", mock.Anything)
	})

	t.Run("back to pending", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)
		resolved := pending()
		resolved.Status = models.ComplaintResolved
		store.On("GetComplaint", "c1").Return(resolved, nil)

		_, err := svc.Transition(context.Background(), admin, "c1", models.ComplaintPending)

		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	})

	t.Run("already decided", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)
		resolved := pending()
		resolved.Status = models.ComplaintResolved
		store.On("GetComplaint", "c1").Return(resolved, nil)

		_, err := svc.Transition(context.Background(), admin, "c1", models.ComplaintRejected)

		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
		store.AssertNotCalled(t, "UpdateComplaintStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent decision", func(t *testing.T) {
		store := new(MockStore)
		svc, _ := newService(t, store)
		store.On("GetComplaint", "c1").Return(pending(), nil)
		store.On("UpdateComplaintStatus", "c1", models.ComplaintPending, models.ComplaintResolved).Return(nil, storage.ErrStaleStatus)

		_, err := svc.Transition(context.Background(), admin, "c1", models.ComplaintResolved)

		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	})
}

func TestDashboard(t *testing.T) {
	store := new(MockStore)
	svc, _ := newService(t, store)
	store.On("CountComplaintsByStatus").Return(map[models.ComplaintStatus]int64{
		models.ComplaintPending: 1, models.ComplaintRejected: 3,
	}, nil)
	store.On("CountReservationsByStatus").Return(map[models.ReservationStatus]int64{}, nil)

	_, err := svc.Dashboard(context.Background(), reporter)
	assert.ErrorIs(t, err, complaint.ErrForbidden)

	d, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.Complaints.Total)
	assert.Equal(t, 0.75, d.Complaints.DecidedRate)
}
