package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// publisher is the part of *nats.Conn the broker writes through.
type publisher interface {
	Publish(subj string, data []byte) error
}

type statusReader interface {
	GameStatus(ctx context.Context, matchID string) (*service.GameSnapshot, error)
}

// Broker publishes game events to the socket service and answers its status
// requests over NATS.
type Broker struct {
	Conn        publisher
	EventsTopic string
	Games       statusReader
}

func NewBroker(nc publisher, eventsTopic string, games statusReader) *Broker {
	return &Broker{
		Conn:        nc,
		EventsTopic: eventsTopic,
		Games:       games,
	}
}

// PublishGameEvent implements service.EventPublisher.
func (b *Broker) PublishGameEvent(ev comm.GameEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.Publish(b.EventsTopic, payload)
}

// handleStatusRequest answers a socket service request for a game snapshot.
func (b *Broker) handleStatusRequest(msgNat *nats.Msg) {
	reply := b.statusReply(msgNat.Data)
	if err := msgNat.Respond(reply); err != nil {
		log.Errorf("Error responding to status request: %s", err)
	}
}

func (b *Broker) statusReply(data []byte) []byte {
	var req comm.StatusRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Errorf("Error decoding status request: %s", err)
		return marshalReply(comm.StatusReply{Error: "malformed request"})
	}

	if b.Games == nil {
		return marshalReply(comm.StatusReply{Error: "game service not ready"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := b.Games.GameStatus(ctx, req.MatchID)
	if err != nil {
		return marshalReply(comm.StatusReply{Error: err.Error()})
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		log.Errorf("Error encoding snapshot for %s: %s", req.MatchID, err)
		return marshalReply(comm.StatusReply{Error: "internal error"})
	}
	return marshalReply(comm.StatusReply{Snapshot: raw})
}

func marshalReply(r comm.StatusReply) []byte {
	payload, err := json.Marshal(r)
	if err != nil {
		log.Errorf("Error %s", err)
	}
	return payload
}

// consume status requests from socket service instances (Queue)
func (b *Broker) QueueSubscribeStatus(nc *nats.Conn, topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(topic, queueGroup, b.handleStatusRequest)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
