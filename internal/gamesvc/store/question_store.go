package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5"
)

const questionColumns = `id, card, question_text, question_type, options, correct_answer, explanation,
	points, difficulty, created_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	q := &models.Question{}
	var card string
	err := row.Scan(
		&q.ID,
		&card,
		&q.QuestionText,
		&q.QuestionType,
		&q.Options,
		&q.CorrectAnswer,
		&q.Explanation,
		&q.Points,
		&q.Difficulty,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.Card = models.Card(card)
	return q, nil
}

func (s *PgStore) CreateQuestion(ctx context.Context, q *models.Question) error {
	query := `
		INSERT INTO questions (card, question_text, question_type, options, correct_answer, explanation,
			points, difficulty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRow(ctx, query,
		string(q.Card), q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer, q.Explanation,
		q.Points, q.Difficulty, q.CreatedAt,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (s *PgStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	q, err := scanQuestion(s.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

func (s *PgStore) QuestionsByCard(ctx context.Context, card models.Card) ([]*models.Question, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE card = $1 ORDER BY id`, string(card))
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for card %s: %w", card, err)
	}
	defer rows.Close()

	var out []*models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *PgStore) RandomQuestion(ctx context.Context) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE explanation <> '' ORDER BY random() LIMIT 1`

	q, err := scanQuestion(s.db.QueryRow(ctx, query))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pick random question: %w", err)
	}
	return q, nil
}
