package models

import (
	"fmt"
	"time"
)

type GameStatus string

const (
	GameWaiting   GameStatus = "waiting"
	GameActive    GameStatus = "active"
	GameCompleted GameStatus = "completed"
	GameCancelled GameStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s GameStatus) Terminal() bool {
	return s == GameCompleted || s == GameCancelled
}

func ParseGameStatus(raw string) (GameStatus, error) {
	switch s := GameStatus(raw); s {
	case GameWaiting, GameActive, GameCompleted, GameCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown game status %q", ErrValidation, raw)
}

// ValidParticipantCount reports whether n is a supported table size.
func ValidParticipantCount(n int) bool {
	switch n {
	case 1, 2, 4, 6:
		return true
	}
	return false
}

// TeamCountFor derives the number of teams: solo games have one team, every other size two.
func TeamCountFor(participantCount int) int {
	if participantCount == 1 {
		return 1
	}
	return 2
}

type Game struct {
	ID                    int64      `json:"id"`
	MatchID               string     `json:"match_id"`
	ParticipantCount      int        `json:"participant_count"`
	TeamCount             int        `json:"team_count"`
	Status                GameStatus `json:"status"`
	WinningTeam           *int       `json:"winning_team"`
	CardsChosen           []Card     `json:"cards_chosen"`
	Team1Marks            int        `json:"team1_marks"`
	Team2Marks            int        `json:"team2_marks"`
	ParticipantsSubmitted int        `json:"participants_submitted"`
	CompletedAt           *time.Time `json:"completed_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ValidTeam reports whether team exists in this game.
func (g *Game) ValidTeam(team int) bool {
	return team >= 1 && team <= g.TeamCount
}

// AddTeamMarks credits marks to the given team total.
func (g *Game) AddTeamMarks(team, marks int) {
	switch team {
	case 1:
		g.Team1Marks += marks
	case 2:
		g.Team2Marks += marks
	}
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	c := *g
	if g.WinningTeam != nil {
		w := *g.WinningTeam
		c.WinningTeam = &w
	}
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	c.CardsChosen = append([]Card(nil), g.CardsChosen...)
	return &c
}

// GameResult is the summary produced once, when a game completes.
type GameResult struct {
	MatchID     string    `json:"match_id"`
	Team1Marks  int       `json:"team1_marks"`
	Team2Marks  int       `json:"team2_marks"`
	WinningTeam *int      `json:"winning_team"`
	CompletedAt time.Time `json:"completed_at"`
}
