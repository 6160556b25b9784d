package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/socketsvc/broker"
	"github.com/avvvet/trivia-services/internal/socketsvc/ws"
	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSocketServer(t *testing.T) (*httptest.Server, *broker.Broker) {
	t.Helper()

	s := ws.NewWs()
	b := broker.NewBroker(nil, "game.status", s.Send, s.GetMatchSockets)
	s.Broker = b

	r := chi.NewRouter()
	SetRoutes(r, s, InitAuth("socket-test-secret"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, b
}

func dial(t *testing.T, srv *httptest.Server, matchId string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?match_id=" + matchId
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) comm.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m comm.WSMessage
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func gameEvent(t *testing.T, eventType, matchId string) []byte {
	t.Helper()
	ev, err := comm.NewGameEvent(eventType, matchId, map[string]string{"status": "completed"}, time.Now())
	require.NoError(t, err)
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return raw
}

func TestWebSocket_StreamsMatchEvents(t *testing.T) {
	srv, b := newSocketServer(t)

	watcher := dial(t, srv, "m-1")
	other := dial(t, srv, "m-2")

	sub := read(t, watcher)
	assert.Equal(t, comm.WSSubscribed, sub.Type)
	assert.NotEmpty(t, sub.SocketId)
	assert.JSONEq(t, `{"match_id":"m-1"}`, string(sub.Data))
	assert.Equal(t, comm.WSSubscribed, read(t, other).Type)

	assert.Equal(t, 1, b.Dispatch(gameEvent(t, comm.EventGameCompleted, "m-1")))

	got := read(t, watcher)
	assert.Equal(t, comm.WSGameEvent, got.Type)
	var ev comm.GameEvent
	require.NoError(t, json.Unmarshal(got.Data, &ev))
	assert.Equal(t, comm.EventGameCompleted, ev.Type)
	assert.Equal(t, "m-1", ev.MatchID)

	assert.Zero(t, b.Dispatch(gameEvent(t, comm.EventGameCreated, "m-3")))
	assert.Zero(t, b.Dispatch([]byte(`not json`)))
}

func TestWebSocket_ClientMessages(t *testing.T) {
	srv, b := newSocketServer(t)
	conn := dial(t, srv, "m-1")
	read(t, conn)

	require.NoError(t, conn.WriteJSON(comm.WSMessage{Type: comm.WSPing}))
	assert.Equal(t, comm.WSPong, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(comm.WSMessage{Type: comm.WSSubscribe, Data: json.RawMessage(`{"match_id":"m-9"}`)}))
	assert.Equal(t, comm.WSSubscribed, read(t, conn).Type)

	assert.Equal(t, 1, b.Dispatch(gameEvent(t, comm.EventPlayerSubmitted, "m-9")))
	assert.Equal(t, comm.WSGameEvent, read(t, conn).Type)
	assert.Zero(t, b.Dispatch(gameEvent(t, comm.EventPlayerSubmitted, "m-1")))

	require.NoError(t, conn.WriteJSON(comm.WSMessage{Type: "dance"}))
	assert.Equal(t, comm.WSError, read(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Equal(t, comm.WSError, read(t, conn).Type)
}

func TestWebSocket_RequiresMatchID(t *testing.T) {
	srv, _ := newSocketServer(t)

	res, err := http.Get(srv.URL + "/v1/ws")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHealth_RequiresJWT(t *testing.T) {
	srv, _ := newSocketServer(t)

	res, err := http.Get(srv.URL + "/v1/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
