package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5"
)

const responseColumns = `id, game_id, participant_id, player_id, response_type, fun_fact_text, card,
	question_id, player_answer, is_correct, answered_at, created_at`

func scanResponse(row pgx.Row) (*models.GameResponse, error) {
	r := &models.GameResponse{}
	var card *string
	err := row.Scan(
		&r.ID,
		&r.GameID,
		&r.ParticipantID,
		&r.PlayerID,
		&r.ResponseType,
		&r.FunFactText,
		&card,
		&r.QuestionID,
		&r.PlayerAnswer,
		&r.IsCorrect,
		&r.AnsweredAt,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if card != nil {
		c := models.Card(*card)
		r.Card = &c
	}
	return r, nil
}

func (s *PgStore) CreateResponse(ctx context.Context, r *models.GameResponse) error {
	query := `
		INSERT INTO game_responses (game_id, participant_id, player_id, response_type, fun_fact_text, card,
			question_id, player_answer, is_correct, answered_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRow(ctx, query,
		r.GameID, r.ParticipantID, r.PlayerID, r.ResponseType, r.FunFactText, cardArg(r.Card),
		r.QuestionID, r.PlayerAnswer, r.IsCorrect, r.AnsweredAt, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: response already exists for participant %d", models.ErrConflict, r.ParticipantID)
		}
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

func (s *PgStore) GetResponseByParticipant(ctx context.Context, participantID int64) (*models.GameResponse, error) {
	query := `SELECT ` + responseColumns + ` FROM game_responses WHERE participant_id = $1`

	r, err := scanResponse(s.db.QueryRow(ctx, query, participantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return r, nil
}

func (s *PgStore) ListResponses(ctx context.Context, gameID int64) ([]*models.GameResponse, error) {
	query := `SELECT ` + responseColumns + ` FROM game_responses WHERE game_id = $1 ORDER BY id`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var out []*models.GameResponse
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PgStore) UpdateResponse(ctx context.Context, r *models.GameResponse) error {
	query := `
		UPDATE game_responses
		SET player_answer = $2, is_correct = $3, answered_at = $4
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, r.ID, r.PlayerAnswer, r.IsCorrect, r.AnsweredAt)
	if err != nil {
		return fmt.Errorf("failed to update response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrResponseNotFound
	}
	return nil
}
