package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5"
)

const gameColumns = `id, match_id, participant_count, team_count, status, winning_team, cards_chosen,
	team1_marks, team2_marks, participants_submitted, completed_at, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	game := &models.Game{}
	var cards []string
	err := row.Scan(
		&game.ID,
		&game.MatchID,
		&game.ParticipantCount,
		&game.TeamCount,
		&game.Status,
		&game.WinningTeam,
		&cards,
		&game.Team1Marks,
		&game.Team2Marks,
		&game.ParticipantsSubmitted,
		&game.CompletedAt,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	game.CardsChosen = make([]models.Card, len(cards))
	for i, c := range cards {
		game.CardsChosen[i] = models.Card(c)
	}
	return game, nil
}

func cardStrings(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = string(c)
	}
	return out
}

func (s *PgStore) CreateGame(ctx context.Context, g *models.Game) error {
	query := `
		INSERT INTO games (match_id, participant_count, team_count, status, cards_chosen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`

	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.UpdatedAt = g.CreatedAt

	err := s.db.QueryRow(ctx, query,
		g.MatchID, g.ParticipantCount, g.TeamCount, g.Status, cardStrings(g.CardsChosen), g.CreatedAt,
	).Scan(&g.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: match %s already exists", models.ErrConflict, g.MatchID)
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (s *PgStore) GetGameByMatchID(ctx context.Context, matchID string) (*models.Game, error) {
	return s.getGame(ctx, `SELECT `+gameColumns+` FROM games WHERE match_id = $1`, matchID)
}

func (s *PgStore) GetGameForUpdate(ctx context.Context, matchID string) (*models.Game, error) {
	return s.getGame(ctx, `SELECT `+gameColumns+` FROM games WHERE match_id = $1 FOR UPDATE`, matchID)
}

func (s *PgStore) getGame(ctx context.Context, query, matchID string) (*models.Game, error) {
	game, err := scanGame(s.db.QueryRow(ctx, query, matchID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game %s: %w", matchID, err)
	}
	return game, nil
}

func (s *PgStore) UpdateGame(ctx context.Context, g *models.Game) error {
	query := `
		UPDATE games
		SET status = $2, winning_team = $3, cards_chosen = $4, team1_marks = $5, team2_marks = $6,
			participants_submitted = $7, completed_at = $8, updated_at = $9
		WHERE id = $1`

	g.UpdatedAt = time.Now().UTC()
	tag, err := s.db.Exec(ctx, query,
		g.ID, g.Status, g.WinningTeam, cardStrings(g.CardsChosen), g.Team1Marks, g.Team2Marks,
		g.ParticipantsSubmitted, g.CompletedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrGameNotFound
	}
	return nil
}
