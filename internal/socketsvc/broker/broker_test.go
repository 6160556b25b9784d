package broker

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSockets struct {
	mu      sync.Mutex
	watch   map[string][]string
	failing map[string]bool
	sent    map[string][]*comm.WSMessage
}

func newFakeSockets() *fakeSockets {
	return &fakeSockets{
		watch:   map[string][]string{},
		failing: map[string]bool{},
		sent:    map[string][]*comm.WSMessage{},
	}
}

func (f *fakeSockets) Send(socketId string, m *comm.WSMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[socketId] {
		return errors.New("write: broken pipe")
	}
	f.sent[socketId] = append(f.sent[socketId], m)
	return nil
}

func (f *fakeSockets) GetMatchSockets(matchId string) ([]string, bool) {
	sockets, ok := f.watch[matchId]
	return sockets, ok
}

func event(t *testing.T, eventType, matchId string) []byte {
	t.Helper()
	ev, err := comm.NewGameEvent(eventType, matchId, map[string]int{"team1_marks": 1}, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return raw
}

func TestDispatch(t *testing.T) {
	f := newFakeSockets()
	f.watch["m-1"] = []string{"s-1", "s-2"}
	f.watch["m-2"] = []string{"s-3"}
	b := NewBroker(nil, "game.status", f.Send, f.GetMatchSockets)

	raw := event(t, comm.EventGameCompleted, "m-1")
	assert.Equal(t, 2, b.Dispatch(raw))

	for _, socketId := range []string{"s-1", "s-2"} {
		require.Len(t, f.sent[socketId], 1, socketId)
		m := f.sent[socketId][0]
		assert.Equal(t, comm.WSGameEvent, m.Type)
		assert.JSONEq(t, string(raw), string(m.Data))
	}
	assert.Empty(t, f.sent["s-3"], "other matches are not notified")
}

func TestDispatch_SkipsFailedSockets(t *testing.T) {
	f := newFakeSockets()
	f.watch["m-1"] = []string{"s-1", "s-2"}
	f.failing["s-1"] = true
	b := NewBroker(nil, "game.status", f.Send, f.GetMatchSockets)

	assert.Equal(t, 1, b.Dispatch(event(t, comm.EventPlayerSubmitted, "m-1")))
	assert.Len(t, f.sent["s-2"], 1)
}

func TestDispatch_Dropped(t *testing.T) {
	f := newFakeSockets()
	f.watch["m-1"] = []string{"s-1"}
	b := NewBroker(nil, "game.status", f.Send, f.GetMatchSockets)

	tests := []struct {
		name string
		data []byte
	}{
		{"malformed", []byte(`{"type":`)},
		{"no match id", event(t, comm.EventGameCreated, "")},
		{"nobody watching", event(t, comm.EventGameCreated, "m-9")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, b.Dispatch(tt.data))
		})
	}
	assert.Empty(t, f.sent)
}

func TestRequestStatus_NotConnected(t *testing.T) {
	b := NewBroker(nil, "game.status", nil, nil)
	_, err := b.RequestStatus("m-1")
	assert.EqualError(t, err, "broker not connected")
}
