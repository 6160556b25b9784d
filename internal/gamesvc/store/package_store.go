package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const packageColumns = `p.id, p.name, p.description, p.type, p.category, p.visibility, p.difficulty,
	p.estimated_duration, p.language, p.tags, p.version, p.status, p.created_by,
	ARRAY(SELECT pq.question_id FROM package_questions pq WHERE pq.package_id = p.id ORDER BY pq.position),
	p.total_attempts, p.completed_attempts, p.average_score::float8, p.completion_rate::float8,
	p.created_at, p.updated_at`

func scanPackage(row pgx.Row) (*models.QuestionPackage, error) {
	p := &models.QuestionPackage{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Type,
		&p.Category,
		&p.Visibility,
		&p.Difficulty,
		&p.EstimatedDuration,
		&p.Language,
		&p.Tags,
		&p.Version,
		&p.Status,
		&p.CreatedBy,
		&p.QuestionIDs,
		&p.TotalAttempts,
		&p.CompletedAttempts,
		&p.AverageScore,
		&p.CompletionRate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.QuestionCount = len(p.QuestionIDs)
	return p, nil
}

func (s *PgStore) CreatePackage(ctx context.Context, p *models.QuestionPackage) error {
	return s.WithTx(ctx, func(tx Store) error {
		db := tx.(*PgStore).db

		query := `
			INSERT INTO question_packages (name, description, type, category, visibility, difficulty,
				estimated_duration, language, tags, version, status, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
			RETURNING id`

		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		p.UpdatedAt = p.CreatedAt

		err := db.QueryRow(ctx, query,
			p.Name, p.Description, string(p.Type), p.Category, string(p.Visibility), p.Difficulty,
			p.EstimatedDuration, p.Language, p.Tags, p.Version, string(p.Status), p.CreatedBy, p.CreatedAt,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to create package: %w", err)
		}

		for i, id := range p.QuestionIDs {
			_, err := db.Exec(ctx,
				`INSERT INTO package_questions (package_id, question_id, position) VALUES ($1, $2, $3)`,
				p.ID, id, i)
			if err != nil {
				if foreignKeyViolation(err) {
					return fmt.Errorf("%w: %d", models.ErrQuestionNotFound, id)
				}
				return fmt.Errorf("failed to add question %d to package: %w", id, err)
			}
		}
		p.QuestionCount = len(p.QuestionIDs)
		return nil
	})
}

func (s *PgStore) GetPackage(ctx context.Context, id int64) (*models.QuestionPackage, error) {
	return s.getPackage(ctx, `SELECT `+packageColumns+` FROM question_packages p WHERE p.id = $1`, id)
}

func (s *PgStore) GetPackageForUpdate(ctx context.Context, id int64) (*models.QuestionPackage, error) {
	return s.getPackage(ctx, `SELECT `+packageColumns+` FROM question_packages p WHERE p.id = $1 FOR UPDATE OF p`, id)
}

func (s *PgStore) getPackage(ctx context.Context, query string, id int64) (*models.QuestionPackage, error) {
	p, err := scanPackage(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get package %d: %w", id, err)
	}
	return p, nil
}

func (s *PgStore) ListPackages(ctx context.Context, status models.PackageStatus) ([]*models.QuestionPackage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+packageColumns+` FROM question_packages p WHERE p.status = $1 ORDER BY p.id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var out []*models.QuestionPackage
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PgStore) UpdatePackage(ctx context.Context, p *models.QuestionPackage) error {
	query := `
		UPDATE question_packages
		SET status = $2, total_attempts = $3, completed_attempts = $4, average_score = $5,
			completion_rate = $6, updated_at = $7
		WHERE id = $1`

	p.UpdatedAt = time.Now().UTC()
	tag, err := s.db.Exec(ctx, query,
		p.ID, string(p.Status), p.TotalAttempts, p.CompletedAttempts, p.AverageScore,
		p.CompletionRate, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPackageNotFound
	}
	return nil
}

func (s *PgStore) PackageQuestions(ctx context.Context, packageID int64) ([]*models.Question, error) {
	query := `
		SELECT q.id, q.card, q.question_text, q.question_type, q.options, q.correct_answer, q.explanation,
			q.points, q.difficulty, q.created_at
		FROM package_questions pq
		JOIN questions q ON q.id = pq.question_id
		WHERE pq.package_id = $1
		ORDER BY pq.position`

	rows, err := s.db.Query(ctx, query, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for package %d: %w", packageID, err)
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

const attemptColumns = `id, player_id, package_id, score::float8, total_questions, correct_answers,
	time_taken, completed, started_at, completed_at`

func (s *PgStore) CreateAttempt(ctx context.Context, a *models.PackageAttempt) error {
	query := `
		INSERT INTO package_attempts (player_id, package_id, score, total_questions, correct_answers,
			time_taken, completed, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}

	err := s.db.QueryRow(ctx, query,
		a.PlayerID, a.PackageID, a.Score, a.TotalQuestions, a.CorrectAnswers,
		a.TimeTaken, a.Completed, a.StartedAt, a.CompletedAt,
	).Scan(&a.ID)
	if err != nil {
		if foreignKeyViolation(err) {
			return models.ErrPackageNotFound
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (s *PgStore) ListAttempts(ctx context.Context, playerID int64) ([]*models.PackageAttempt, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+attemptColumns+` FROM package_attempts WHERE player_id = $1 ORDER BY id DESC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var out []*models.PackageAttempt
	for rows.Next() {
		a := &models.PackageAttempt{}
		err := rows.Scan(
			&a.ID,
			&a.PlayerID,
			&a.PackageID,
			&a.Score,
			&a.TotalQuestions,
			&a.CorrectAnswers,
			&a.TimeTaken,
			&a.Completed,
			&a.StartedAt,
			&a.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// foreignKeyViolation reports SQLSTATE 23503.
func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
