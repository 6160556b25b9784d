package service

import (
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
)

// Outcome is one game's contribution to a player's running totals.
type Outcome struct {
	Won               bool
	Marks             int
	QuestionsAnswered int
	CorrectAnswers    int
	PlayedAt          time.Time
}

// ApplyGameOutcome folds o into p. It has no side effects beyond p.
func ApplyGameOutcome(p *models.Player, o Outcome) {
	p.GamesPlayed++
	if o.Won {
		p.GamesWon++
		p.CurrentStreak++
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
		p.LastResult = models.ResultWon
	} else {
		p.GamesLost++
		p.CurrentStreak = 0
		p.LastResult = models.ResultLost
	}

	p.TotalMarks += o.Marks
	p.QuestionsAnswered += o.QuestionsAnswered
	p.CorrectAnswers += o.CorrectAnswers

	at := o.PlayedAt
	p.LastPlayedAt = &at
}
