package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// PlayerService handles accounts, stats and rankings.
type PlayerService struct {
	store store.Store
}

func NewPlayerService(st store.Store) *PlayerService {
	return &PlayerService{store: st}
}

type RegisterInput struct {
	Username        string
	PlayerName      string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
	AgeGroup        string
	Gender          string
	Province        string
	District        string
}

func (s *PlayerService) Register(ctx context.Context, in RegisterInput) (*models.Player, error) {
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case in.Username == "":
		return nil, fmt.Errorf("%w: username", models.ErrMissingField)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password", models.ErrMissingField)
	case in.Password != in.ConfirmPassword:
		return nil, fmt.Errorf("%w: passwords do not match", models.ErrValidation)
	case !models.ValidGender(in.Gender):
		return nil, fmt.Errorf("%w: gender %q", models.ErrValidation, in.Gender)
	case !models.ValidAgeGroup(in.AgeGroup):
		return nil, fmt.Errorf("%w: age_group %q", models.ErrValidation, in.AgeGroup)
	case !models.ValidLocation(in.Province, in.District):
		return nil, models.ErrInvalidLocation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := in.PlayerName
	if name == "" {
		name = in.Username
	}
	p := &models.Player{
		UUID:         uuid.NewString(),
		Username:     in.Username,
		PlayerName:   name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		AgeGroup:     in.AgeGroup,
		Gender:       in.Gender,
		Province:     in.Province,
		District:     in.District,
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}

	log.WithField("username", p.Username).Info("player registered")
	return p, nil
}

// Login checks the password and returns the player; its UUID is the API token.
func (s *PlayerService) Login(ctx context.Context, username, password string) (*models.Player, error) {
	p, err := s.store.GetPlayerByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if p == nil || p.PasswordHash == "" {
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return p, nil
}

// Authenticate resolves an API token to its player.
func (s *PlayerService) Authenticate(ctx context.Context, token string) (*models.Player, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	p, err := s.store.GetPlayerByUUID(ctx, token)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.ErrInvalidCredentials
	}
	return p, nil
}

// Logout revokes the player's API token by issuing a fresh one that is not
// handed out until the next login.
func (s *PlayerService) Logout(ctx context.Context, p *models.Player) error {
	if p == nil {
		return models.ErrInvalidCredentials
	}
	if err := s.store.SetPlayerUUID(ctx, p.ID, uuid.NewString()); err != nil {
		return err
	}
	log.WithField("username", p.Username).Info("player logged out")
	return nil
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	PlayerName *string
	Email      *string
	Phone      *string
	AgeGroup   *string
	Gender     *string
	Province   *string
	District   *string
}

// UpdateProfile applies the set fields of in to the player's profile.
func (s *PlayerService) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*models.Player, error) {
	var out *models.Player
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		p, err := tx.GetPlayerByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return models.ErrPlayerNotFound
		}

		set := func(dst *string, v *string) {
			if v != nil {
				*dst = strings.TrimSpace(*v)
			}
		}
		set(&p.PlayerName, in.PlayerName)
		set(&p.Email, in.Email)
		set(&p.Phone, in.Phone)
		set(&p.AgeGroup, in.AgeGroup)
		set(&p.Gender, in.Gender)
		set(&p.Province, in.Province)
		set(&p.District, in.District)

		switch {
		case p.PlayerName == "":
			return fmt.Errorf("%w: player_name", models.ErrMissingField)
		case !models.ValidGender(p.Gender):
			return fmt.Errorf("%w: gender %q", models.ErrValidation, p.Gender)
		case !models.ValidAgeGroup(p.AgeGroup):
			return fmt.Errorf("%w: age_group %q", models.ErrValidation, p.AgeGroup)
		case !models.ValidLocation(p.Province, p.District):
			return models.ErrInvalidLocation
		}

		if err := tx.UpdatePlayerProfile(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PlayerService) Stats(ctx context.Context, username string) (*models.PlayerStats, error) {
	p, err := s.store.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.ErrPlayerNotFound
	}
	stats := p.Stats()
	return &stats, nil
}

type LeaderboardEntry struct {
	Rank  int     `json:"rank"`
	Value float64 `json:"value"`
	models.PlayerStats
}

var leaderboardMetrics = map[string]func(models.PlayerStats) float64{
	"total_marks":     func(s models.PlayerStats) float64 { return float64(s.TotalMarks) },
	"games_won":       func(s models.PlayerStats) float64 { return float64(s.GamesWon) },
	"games_played":    func(s models.PlayerStats) float64 { return float64(s.GamesPlayed) },
	"win_rate":        func(s models.PlayerStats) float64 { return s.WinRate },
	"answer_accuracy": func(s models.PlayerStats) float64 { return s.AnswerAccuracy },
	"longest_streak":  func(s models.PlayerStats) float64 { return float64(s.LongestStreak) },
	"average_marks":   func(s models.PlayerStats) float64 { return s.AverageMarks },
}

// Leaderboard ranks players who have played at least one game by metric,
// highest first; ties keep registration order.
func (s *PlayerService) Leaderboard(ctx context.Context, metric string, limit int) ([]LeaderboardEntry, error) {
	if metric == "" {
		metric = "total_marks"
	}
	value, ok := leaderboardMetrics[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidMetric, metric)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(players))
	for _, p := range players {
		if p.GamesPlayed == 0 {
			continue
		}
		st := p.Stats()
		entries = append(entries, LeaderboardEntry{Value: value(st), PlayerStats: st})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
