package models

import "time"

type ResponseType string

const (
	ResponseFunFact  ResponseType = "fun_fact"
	ResponseQuestion ResponseType = "question"
)

const (
	FallbackFunFact     = "Every card in the deck hides a story. Keep playing to unlock more fun facts!"
	NoQuestionAvailable = "No question available for this card"
)

// GameResponse is what a participant receives after submitting: a fun fact for
// winners, a question for losers. One per participant.
type GameResponse struct {
	ID            int64        `json:"id"`
	GameID        int64        `json:"game_id"`
	ParticipantID int64        `json:"participant_id"`
	PlayerID      int64        `json:"player_id"`
	ResponseType  ResponseType `json:"response_type"`
	FunFactText   string       `json:"fun_fact,omitempty"`
	Card          *Card        `json:"card"`
	QuestionID    *int64       `json:"question_id,omitempty"`
	PlayerAnswer  string       `json:"player_answer,omitempty"`
	IsCorrect     *bool        `json:"is_correct,omitempty"`
	AnsweredAt    *time.Time   `json:"answered_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (r *GameResponse) Answered() bool {
	return r.AnsweredAt != nil
}

func (r *GameResponse) Clone() *GameResponse {
	c := *r
	if r.Card != nil {
		card := *r.Card
		c.Card = &card
	}
	if r.QuestionID != nil {
		id := *r.QuestionID
		c.QuestionID = &id
	}
	if r.IsCorrect != nil {
		v := *r.IsCorrect
		c.IsCorrect = &v
	}
	if r.AnsweredAt != nil {
		t := *r.AnsweredAt
		c.AnsweredAt = &t
	}
	return &c
}
