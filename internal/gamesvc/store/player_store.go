package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5"
)

const playerColumns = `id, uuid, username, player_name, email, phone, password_hash, age_group, gender,
	province, district, created_at, updated_at, games_played, games_won, games_lost, total_marks,
	questions_answered, correct_answers, current_streak, longest_streak, last_result, last_played_at`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(
		&p.ID,
		&p.UUID,
		&p.Username,
		&p.PlayerName,
		&p.Email,
		&p.Phone,
		&p.PasswordHash,
		&p.AgeGroup,
		&p.Gender,
		&p.Province,
		&p.District,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.GamesPlayed,
		&p.GamesWon,
		&p.GamesLost,
		&p.TotalMarks,
		&p.QuestionsAnswered,
		&p.CorrectAnswers,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.LastResult,
		&p.LastPlayedAt,
	)
	return p, err
}

func (s *PgStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (uuid, username, player_name, email, phone, password_hash, age_group, gender,
			province, district, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id`

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt

	err := s.db.QueryRow(ctx, query,
		p.UUID, p.Username, p.PlayerName, p.Email, p.Phone, p.PasswordHash, p.AgeGroup, p.Gender,
		p.Province, p.District, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: %s", models.ErrUsernameTaken, p.Username)
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (s *PgStore) GetPlayerByID(ctx context.Context, id int64) (*models.Player, error) {
	return s.getPlayer(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
}

func (s *PgStore) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	return s.getPlayer(ctx, `SELECT `+playerColumns+` FROM players WHERE username = $1`, username)
}

func (s *PgStore) GetPlayerByUUID(ctx context.Context, uuid string) (*models.Player, error) {
	return s.getPlayer(ctx, `SELECT `+playerColumns+` FROM players WHERE uuid = $1`, uuid)
}

func (s *PgStore) getPlayer(ctx context.Context, query string, arg any) (*models.Player, error) {
	p, err := scanPlayer(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *PgStore) UpdatePlayer(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players
		SET player_name = $2, email = $3, phone = $4, age_group = $5, gender = $6, province = $7,
			district = $8, updated_at = $9, games_played = $10, games_won = $11, games_lost = $12,
			total_marks = $13, questions_answered = $14, correct_answers = $15, current_streak = $16,
			longest_streak = $17, last_result = $18, last_played_at = $19
		WHERE id = $1`

	p.UpdatedAt = time.Now().UTC()
	tag, err := s.db.Exec(ctx, query,
		p.ID, p.PlayerName, p.Email, p.Phone, p.AgeGroup, p.Gender, p.Province,
		p.District, p.UpdatedAt, p.GamesPlayed, p.GamesWon, p.GamesLost,
		p.TotalMarks, p.QuestionsAnswered, p.CorrectAnswers, p.CurrentStreak,
		p.LongestStreak, p.LastResult, p.LastPlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPlayerNotFound
	}
	return nil
}

func (s *PgStore) UpdatePlayerProfile(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players
		SET player_name = $2, email = $3, phone = $4, age_group = $5, gender = $6, province = $7,
			district = $8, updated_at = $9
		WHERE id = $1`

	p.UpdatedAt = time.Now().UTC()
	tag, err := s.db.Exec(ctx, query,
		p.ID, p.PlayerName, p.Email, p.Phone, p.AgeGroup, p.Gender, p.Province, p.District, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update player profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPlayerNotFound
	}
	return nil
}

func (s *PgStore) SetPlayerUUID(ctx context.Context, id int64, uuid string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE players SET uuid = $2, updated_at = $3 WHERE id = $1`, id, uuid, time.Now().UTC())
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: token already in use", models.ErrConflict)
		}
		return fmt.Errorf("failed to set player token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPlayerNotFound
	}
	return nil
}

func (s *PgStore) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	rows, err := s.db.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
