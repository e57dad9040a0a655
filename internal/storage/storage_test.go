package storage_test

import (
	"context"
	"testing"

	"estatehub/backend/internal/models"
	"estatehub/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Malformed ids are answered before any query reaches the database, so a nil
// DB is enough here.
func TestService_MalformedIDsAreNotFound(t *testing.T) {
	s := storage.NewStorageService(nil, nil)
	ctx := context.Background()

	_, err := s.GetPost(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetUserByID(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetChat(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetMessages(ctx, "abc", 10)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetReservation(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.UpdateReservationStatus(ctx, "abc", models.ReservationPending, models.ReservationConfirmed)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetComplaint(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.ToggleFavorite(ctx, "abc", "def")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, "abc"), storage.ErrNotFound)
	assert.ErrorIs(t, s.SaveMessage(ctx, &models.Message{ChatID: "abc"}), storage.ErrNotFound)

	ok, err := s.IsChatParticipant(ctx, "abc", "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	users, err := s.GetUsersByIDs(ctx, []string{"abc", ""})
	require.NoError(t, err)
	assert.Empty(t, users)
}
