package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/socketsvc/ws"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWebSocket_RequiresMatchId(t *testing.T) {
	h := NewHandler(ws.NewWs())

	rec := httptest.NewRecorder()
	h.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/v1/ws", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var rsp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rsp))
	assert.Equal(t, "match_id is required", rsp.Error)
}

func TestHandleWebSocket_WatchesMatch(t *testing.T) {
	s := ws.NewWs()
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(s).HandleWebSocket))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?match_id=m-1", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m comm.WSMessage
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, comm.WSSubscribed, m.Type)
	require.NotEmpty(t, m.SocketId)

	sockets, ok := s.GetMatchSockets("m-1")
	require.True(t, ok)
	assert.Equal(t, []string{m.SocketId}, sockets)

	// malformed frames get an error reply and keep the socket open
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, comm.WSError, m.Type)

	require.NoError(t, conn.WriteJSON(comm.WSMessage{Type: comm.WSPing}))
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, comm.WSPong, m.Type)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool {
		_, ok := s.GetMatchSockets("m-1")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHealthHandler(t *testing.T) {
	t.Setenv("SOCKET_SERVICE_PORT", "8081")
	h := NewHandler(ws.NewWs())

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "8081")
}
