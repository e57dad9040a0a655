package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estatehub/backend/internal/models"
	"estatehub/backend/internal/storage"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestServeWebSocket(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, renter)
	api.store.On("SubscribeMessages").Return(nil, storage.ErrNoPubSub)
	api.store.On("SetOnline", renter.ID, mock.Anything).Return(nil)
	api.store.On("IsChatParticipant", "c1", renter.ID).Return(true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go api.hub.Run(ctx)
	srv := httptest.NewServer(api.router)
	t.Cleanup(func() {
		cancel()
		<-api.hub.Done()
		srv.Close()
	})
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	join, err := models.NewEnvelope(models.EventJoinChat, 1, models.RoomRequest{ChatID: "c1"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(join))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply models.Envelope
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, models.EventAck, reply.Event)
	assert.Equal(t, uint64(1), reply.AckID)
	assert.JSONEq(t, `{"success":true}`, string(reply.Data))
}
