package broker

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const statusTimeout = 3 * time.Second

type Broker struct {
	Conn            *nats.Conn
	StatusTopic     string
	Send            func(socketId string, m *comm.WSMessage) error
	GetMatchSockets func(matchId string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, statusTopic string, fncSend func(string, *comm.WSMessage) error, fncGetMatchSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:            conn,
		StatusTopic:     statusTopic,
		Send:            fncSend,
		GetMatchSockets: fncGetMatchSockets,
	}
}

// consume game events; every socket service instance gets every event
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// handleMessages receive message from game service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	b.Dispatch(msgNats.Data)
}

// Dispatch forwards a game event to every socket watching its match and
// returns how many sockets it reached.
func (b *Broker) Dispatch(data []byte) int {
	ev := comm.GameEvent{}
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Errorf("Error decoding game event: %s", err)
		return 0
	}
	if ev.MatchID == "" {
		log.Warnf("game event %s without match id dropped", ev.Type)
		return 0
	}

	sockets, ok := b.GetMatchSockets(ev.MatchID)
	if !ok {
		return 0
	}

	msg := &comm.WSMessage{Type: comm.WSGameEvent, Data: data}
	sent := 0
	for _, socketId := range sockets {
		if err := b.Send(socketId, msg); err != nil {
			log.Errorf("Error sending %s to socket %s: %s", ev.Type, socketId, err)
			continue
		}
		sent++
	}
	return sent
}

// RequestStatus asks the game service for the current snapshot of a match.
func (b *Broker) RequestStatus(matchId string) (json.RawMessage, error) {
	if b.Conn == nil {
		return nil, errors.New("broker not connected")
	}

	payload, err := json.Marshal(comm.StatusRequest{MatchID: matchId})
	if err != nil {
		return nil, err
	}

	msg, err := b.Conn.Request(b.StatusTopic, payload, statusTimeout)
	if err != nil {
		return nil, err
	}

	reply := comm.StatusReply{}
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, errors.New(reply.Error)
	}
	return reply.Snapshot, nil
}
