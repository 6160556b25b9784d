package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5"
)

const participantColumns = `id, game_id, player_id, username, player_name, team, is_winner, marks_earned,
	lost_card, question_answered, answer_correct, submitted_at`

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	p := &models.Participant{}
	var lost *string
	err := row.Scan(
		&p.ID,
		&p.GameID,
		&p.PlayerID,
		&p.Username,
		&p.PlayerName,
		&p.Team,
		&p.IsWinner,
		&p.MarksEarned,
		&lost,
		&p.QuestionAnswered,
		&p.AnswerCorrect,
		&p.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	if lost != nil {
		c := models.Card(*lost)
		p.LostCard = &c
	}
	return p, nil
}

func cardArg(c *models.Card) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

func (s *PgStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO game_participants (game_id, player_id, username, player_name, team, is_winner,
			marks_earned, lost_card, question_answered, answer_correct, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now().UTC()
	}

	err := s.db.QueryRow(ctx, query,
		p.GameID, p.PlayerID, p.Username, p.PlayerName, p.Team, p.IsWinner,
		p.MarksEarned, cardArg(p.LostCard), p.QuestionAnswered, p.AnswerCorrect, p.SubmittedAt,
	).Scan(&p.ID)
	if err != nil {
		if name, ok := uniqueViolation(err); ok && name == "unique_game_player" {
			return models.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (s *PgStore) GetParticipant(ctx context.Context, gameID, playerID int64) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM game_participants WHERE game_id = $1 AND player_id = $2`

	p, err := scanParticipant(s.db.QueryRow(ctx, query, gameID, playerID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns participants in submission order.
func (s *PgStore) ListParticipants(ctx context.Context, gameID int64) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM game_participants WHERE game_id = $1 ORDER BY id`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PgStore) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	query := `
		UPDATE game_participants
		SET is_winner = $2, marks_earned = $3, lost_card = $4, question_answered = $5, answer_correct = $6
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query,
		p.ID, p.IsWinner, p.MarksEarned, cardArg(p.LostCard), p.QuestionAnswered, p.AnswerCorrect,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrParticipantNotFound
	}
	return nil
}
