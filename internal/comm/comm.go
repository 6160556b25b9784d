package comm

import (
	"encoding/json"
	"time"
)

// WSMessage is the envelope written to websocket clients.
type WSMessage struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid,omitempty"`
}

// WSMessage types.
const (
	WSSubscribe  = "subscribe"
	WSSubscribed = "subscribed"
	WSSnapshot   = "snapshot"
	WSGameEvent  = "game-event"
	WSPing       = "ping"
	WSPong       = "pong"
	WSError      = "error"
)

const (
	EventGameCreated     = "game.created"
	EventGameActivated   = "game.activated"
	EventPlayerSubmitted = "player.submitted"
	EventGameCompleted   = "game.completed"
	EventGameCancelled   = "game.cancelled"
	EventAnswerSubmitted = "answer.submitted"
	EventPointsAwarded   = "points.awarded"
)

// GameEvent travels over NATS from the game service to the socket service.
type GameEvent struct {
	Type      string          `json:"type"`
	MatchID   string          `json:"match_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewGameEvent marshals data into a GameEvent stamped with now.
func NewGameEvent(eventType, matchID string, data any, now time.Time) (GameEvent, error) {
	ev := GameEvent{Type: eventType, MatchID: matchID, Timestamp: now}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return GameEvent{}, err
		}
		ev.Data = raw
	}
	return ev, nil
}

type PlayerSubmitted struct {
	PlayerID     int64   `json:"player_id"`
	Username     string  `json:"username"`
	Team         int     `json:"team"`
	IsWinner     bool    `json:"is_winner"`
	Submitted    int     `json:"participants_submitted"`
	Participants int     `json:"participant_count"`
	LostCard     *string `json:"lost_card,omitempty"`
}

type AnswerSubmitted struct {
	PlayerID  int64 `json:"player_id"`
	IsCorrect bool  `json:"is_correct"`
}

type PointsAwarded struct {
	PlayerID int64 `json:"player_id"`
	Points   int   `json:"points"`
}

// StatusRequest asks the game service for a match snapshot (NATS request/reply).
type StatusRequest struct {
	MatchID string `json:"match_id"`
}

type StatusReply struct {
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}
