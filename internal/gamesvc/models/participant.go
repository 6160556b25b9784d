package models

import "time"

type Participant struct {
	ID               int64     `json:"id"`
	GameID           int64     `json:"game_id"`
	PlayerID         int64     `json:"player_id"`
	Username         string    `json:"username"`
	PlayerName       string    `json:"player_name"`
	Team             int       `json:"team"`
	IsWinner         bool      `json:"is_winner"`
	MarksEarned      int       `json:"marks_earned"`
	LostCard         *Card     `json:"lost_card"`
	QuestionAnswered bool      `json:"question_answered"`
	AnswerCorrect    bool      `json:"answer_correct"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// PointsAwarded reports whether the bonus for a correct answer was already granted.
func (p *Participant) PointsAwarded() bool {
	return p.QuestionAnswered && p.AnswerCorrect
}

func (p *Participant) Clone() *Participant {
	c := *p
	if p.LostCard != nil {
		card := *p.LostCard
		c.LostCard = &card
	}
	return &c
}
