package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GameResultKind string

const (
	ResultWon  GameResultKind = "won"
	ResultLost GameResultKind = "lost"
)

// Player represents the players table. Counters are cumulative over all completed submissions.
type Player struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Username     string    `json:"username"`
	PlayerName   string    `json:"player_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	AgeGroup     string    `json:"age_group,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Province     string    `json:"province,omitempty"`
	District     string    `json:"district,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	GamesPlayed       int            `json:"games_played"`
	GamesWon          int            `json:"games_won"`
	GamesLost         int            `json:"games_lost"`
	TotalMarks        int            `json:"total_marks"`
	QuestionsAnswered int            `json:"questions_answered"`
	CorrectAnswers    int            `json:"correct_answers"`
	CurrentStreak     int            `json:"current_streak"`
	LongestStreak     int            `json:"longest_streak"`
	LastResult        GameResultKind `json:"last_result,omitempty"`
	LastPlayedAt      *time.Time     `json:"last_played_at"`
}

func (p *Player) Clone() *Player {
	c := *p
	if p.LastPlayedAt != nil {
		t := *p.LastPlayedAt
		c.LastPlayedAt = &t
	}
	return &c
}

// WinRate is games won over games played as a percentage.
func (p *Player) WinRate() float64 {
	return percentage(p.GamesWon, p.GamesPlayed)
}

// AnswerAccuracy is correct answers over questions answered as a percentage.
func (p *Player) AnswerAccuracy() float64 {
	return percentage(p.CorrectAnswers, p.QuestionsAnswered)
}

// AverageMarks is total marks per game played.
func (p *Player) AverageMarks() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	f, _ := decimal.NewFromInt(int64(p.TotalMarks)).
		DivRound(decimal.NewFromInt(int64(p.GamesPlayed)), 2).
		Float64()
	return f
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	f, _ := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(whole)), 2).
		Float64()
	return f
}

// PlayerStats is the read model served by the stats and leaderboard endpoints.
type PlayerStats struct {
	PlayerID          int64          `json:"player_id"`
	Username          string         `json:"username"`
	PlayerName        string         `json:"player_name"`
	GamesPlayed       int            `json:"games_played"`
	GamesWon          int            `json:"games_won"`
	GamesLost         int            `json:"games_lost"`
	TotalMarks        int            `json:"total_marks"`
	QuestionsAnswered int            `json:"questions_answered"`
	CorrectAnswers    int            `json:"correct_answers"`
	CurrentStreak     int            `json:"current_streak"`
	LongestStreak     int            `json:"longest_streak"`
	LastResult        GameResultKind `json:"last_result,omitempty"`
	LastPlayedAt      *time.Time     `json:"last_played_at"`
	WinRate           float64        `json:"win_rate"`
	AnswerAccuracy    float64        `json:"answer_accuracy"`
	AverageMarks      float64        `json:"average_marks"`
}

func (p *Player) Stats() PlayerStats {
	return PlayerStats{
		PlayerID:          p.ID,
		Username:          p.Username,
		PlayerName:        p.PlayerName,
		GamesPlayed:       p.GamesPlayed,
		GamesWon:          p.GamesWon,
		GamesLost:         p.GamesLost,
		TotalMarks:        p.TotalMarks,
		QuestionsAnswered: p.QuestionsAnswered,
		CorrectAnswers:    p.CorrectAnswers,
		CurrentStreak:     p.CurrentStreak,
		LongestStreak:     p.LongestStreak,
		LastResult:        p.LastResult,
		LastPlayedAt:      p.LastPlayedAt,
		WinRate:           p.WinRate(),
		AnswerAccuracy:    p.AnswerAccuracy(),
		AverageMarks:      p.AverageMarks(),
	}
}
