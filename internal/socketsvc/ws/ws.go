package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/socketsvc/broker"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

var ErrUnknownSocket = errors.New("unknown socket")

// client serializes writes; gorilla connections allow one writer at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(m *comm.WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(m)
}

type Ws struct {
	connMap  sync.Map // socketId -> *client
	matchMap sync.Map // socketId -> watched matchId
	Broker   *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case comm.WSSubscribe:
		s.handleSubscribe(socketId, message)
	case comm.WSPing:
		s.reply(socketId, comm.WSPong, nil)
	default:
		log.Warnf("unknown event received: %s", message.Type)
		s.SendError(socketId, "unknown message type "+message.Type)
	}
}

func (s *Ws) handleSubscribe(socketId string, msg *comm.WSMessage) {
	var payload struct {
		MatchId string `json:"match_id"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.MatchId == "" {
		log.Errorf("Error: invalid subscribe payload from %s", socketId)
		s.SendError(socketId, "subscribe needs a match_id")
		return
	}

	s.Watch(socketId, payload.MatchId)
}

// Watch points socketId at matchId, confirms it and pushes the current snapshot
// when the game service answers.
func (s *Ws) Watch(socketId, matchId string) {
	s.matchMap.Store(socketId, matchId)
	s.reply(socketId, comm.WSSubscribed, map[string]string{"match_id": matchId})

	if s.Broker == nil || s.Broker.Conn == nil {
		return
	}
	snapshot, err := s.Broker.RequestStatus(matchId)
	if err != nil {
		log.Warnf("status for match %s: %s", matchId, err)
		s.SendError(socketId, err.Error())
		return
	}
	if err := s.Send(socketId, &comm.WSMessage{Type: comm.WSSnapshot, Data: snapshot}); err != nil {
		log.Errorf("Failed to send snapshot to %s: %v", socketId, err)
	}
}

func (s *Ws) reply(socketId, msgType string, data interface{}) {
	m := &comm.WSMessage{Type: msgType, SocketId: socketId}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			log.Errorf("Failed to marshal %s reply: %v", msgType, err)
			return
		}
		m.Data = raw
	}
	if err := s.Send(socketId, m); err != nil {
		log.Errorf("Failed to send %s to %s: %v", msgType, socketId, err)
	}
}

func (s *Ws) SendError(socketId, errorMsg string) {
	s.reply(socketId, comm.WSError, map[string]string{"error": errorMsg})
}

// Send writes m to one socket.
func (s *Ws) Send(socketId string, m *comm.WSMessage) error {
	c, ok := s.connMap.Load(socketId)
	if !ok {
		return ErrUnknownSocket
	}
	return c.(*client).write(m)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, &client{conn: conn})
}

func (s *Ws) GetMatch(socketId string) (string, bool) {
	match, ok := s.matchMap.Load(socketId)
	if !ok {
		return "", false
	}
	return match.(string), true
}

func (s *Ws) GetMatchSockets(matchId string) ([]string, bool) {
	var sockets []string
	found := false

	s.matchMap.Range(func(key, value interface{}) bool {
		if value.(string) == matchId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.matchMap.Delete(socketId)
	log.Infof("socket %s removed", socketId)
}
